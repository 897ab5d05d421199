// Package permission backs role-scoped authorization with casbin.
package permission

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/shadowiq/shadowiq/internal/application/access"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

var _ access.RoleAuthorizer = (*Enforcer)(nil)

type Enforcer struct {
	enforcer *casbin.Enforcer
	catalog  *Catalog
	mu       sync.RWMutex
	logger   logger.Interface
}

// NewEnforcer loads policies stored in casbin_rule. Call PolicySync first
// on an empty database.
func NewEnforcer(db *gorm.DB, catalog *Catalog, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTable)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		catalog:  catalog,
		logger:   log,
	}, nil
}

// Authorize reports whether role may perform operation ("resource.action").
func (e *Enforcer) Authorize(role identity.Role, operation string) (bool, error) {
	obj, act, err := splitOperation(operation)
	if err != nil {
		return false, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(role.String(), obj, act)
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "role", role, "operation", operation)
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	return allowed, nil
}

func (e *Enforcer) RequiredRoles(operation string) []string {
	return e.catalog.DirectRoles(operation)
}

func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}

	e.logger.Infow("policy reloaded successfully")
	return nil
}
