package permission

import (
	"context"
	"fmt"

	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

const casbinTable = "casbin_rule"

// PolicySync replaces the stored casbin rules with the catalog.
type PolicySync struct {
	db      *gorm.DB
	catalog *Catalog
	logger  logger.Interface
}

func NewPolicySync(db *gorm.DB, catalog *Catalog, logger logger.Interface) *PolicySync {
	return &PolicySync{
		db:      db,
		catalog: catalog,
		logger:  logger,
	}
}

// SyncToCasbin rewrites every p and g rule in one transaction and returns
// the number of rules written.
func (s *PolicySync) SyncToCasbin(ctx context.Context) (int, error) {
	s.logger.Infow("syncing policies to casbin")

	rules := s.rules()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureTable(tx); err != nil {
			return err
		}
		if err := tx.Table(casbinTable).Where("ptype IN ?", []string{"p", "g"}).Delete(&gormadapter.CasbinRule{}).Error; err != nil {
			return fmt.Errorf("failed to clear casbin rules: %w", err)
		}
		if len(rules) == 0 {
			return nil
		}
		if err := tx.Table(casbinTable).Create(&rules).Error; err != nil {
			return fmt.Errorf("failed to insert casbin rules: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Infow("policies synced to casbin", "count", len(rules))
	return len(rules), nil
}

// EnsureSeeded syncs only when no policy rule is stored yet.
func (s *PolicySync) EnsureSeeded(ctx context.Context) error {
	if err := s.ensureTable(s.db.WithContext(ctx)); err != nil {
		return err
	}
	var count int64
	if err := s.db.WithContext(ctx).Table(casbinTable).Where("ptype = ?", "p").Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count casbin rules: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err := s.SyncToCasbin(ctx)
	return err
}

func (s *PolicySync) ensureTable(tx *gorm.DB) error {
	if tx.Migrator().HasTable(casbinTable) {
		return nil
	}
	if err := tx.Table(casbinTable).AutoMigrate(&gormadapter.CasbinRule{}); err != nil {
		return fmt.Errorf("failed to create casbin table: %w", err)
	}
	return nil
}

func (s *PolicySync) rules() []gormadapter.CasbinRule {
	var out []gormadapter.CasbinRule
	for _, p := range s.catalog.Policies() {
		out = append(out, gormadapter.CasbinRule{Ptype: "p", V0: p[0], V1: p[1], V2: p[2]})
	}
	for _, g := range s.catalog.GroupingPolicies() {
		out = append(out, gormadapter.CasbinRule{Ptype: "g", V0: g[0], V1: g[1]})
	}
	return out
}
