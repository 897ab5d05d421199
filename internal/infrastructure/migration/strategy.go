package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// ErrNotSupported is returned by strategies that cannot perform an operation.
var ErrNotSupported = errors.New("operation not supported by migration strategy")

// Strategy defines the interface for different migration strategies
type Strategy interface {
	// Up applies all pending migrations.
	Up(db *gorm.DB) error
	// Down rolls back the given number of migrations.
	Down(db *gorm.DB, steps int) error
	// Version returns the applied version and whether it is dirty.
	Version(db *gorm.DB) (uint, bool, error)
	Name() string
}

// GolangMigrateStrategy runs the versioned SQL scripts embedded in the
// binary for one dialect.
type GolangMigrateStrategy struct {
	dialect string
	scripts fs.FS
	logger  logger.Interface
}

// NewGolangMigrateStrategy creates a strategy for dialect "mysql" or
// "postgres". scripts must contain scripts/<dialect>.
func NewGolangMigrateStrategy(dialect string, scripts fs.FS, log logger.Interface) *GolangMigrateStrategy {
	return &GolangMigrateStrategy{
		dialect: dialect,
		scripts: scripts,
		logger:  log.With("component", "migration.golang-migrate", "dialect", dialect),
	}
}

func (s *GolangMigrateStrategy) Name() string {
	return "golang_migrate"
}

func (s *GolangMigrateStrategy) Up(db *gorm.DB) error {
	m, err := s.open(db)
	if err != nil {
		return err
	}

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		s.logger.Warnw("database is in dirty state, please fix manually", "version", current)
		return fmt.Errorf("database is in dirty state at version %d", current)
	}

	s.logger.Infow("applying migrations", "from_version", current)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	final, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get final migration version: %w", err)
	}
	s.logger.Infow("migrations applied", "from_version", current, "to_version", final)
	return nil
}

func (s *GolangMigrateStrategy) Down(db *gorm.DB, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}
	m, err := s.open(db)
	if err != nil {
		return err
	}

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		s.logger.Errorw("down migration failed", "steps", steps, "error", err)
		return fmt.Errorf("failed to run down migrations: %w", err)
	}
	s.logger.Infow("down migration completed", "steps", steps)
	return nil
}

func (s *GolangMigrateStrategy) Version(db *gorm.DB) (uint, bool, error) {
	m, err := s.open(db)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Force sets the version and clears the dirty flag after a manual repair.
func (s *GolangMigrateStrategy) Force(db *gorm.DB, version int) error {
	m, err := s.open(db)
	if err != nil {
		return err
	}
	if err := m.Force(version); err != nil {
		return fmt.Errorf("failed to force version: %w", err)
	}
	s.logger.Infow("forced migration version", "version", version)
	return nil
}

// open builds a migrate instance on the pool gorm already holds. The
// instance is not closed because that would close the shared *sql.DB.
func (s *GolangMigrateStrategy) open(db *gorm.DB) (*migrate.Migrate, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	driver, err := s.driver(sqlDB)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(s.scripts, path.Join("scripts", s.dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to open migration scripts: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, s.dialect, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func (s *GolangMigrateStrategy) driver(sqlDB *sql.DB) (database.Driver, error) {
	switch s.dialect {
	case "mysql":
		d, err := mysql.WithInstance(sqlDB, &mysql.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create MySQL driver: %w", err)
		}
		return d, nil
	case "postgres":
		d, err := postgres.WithInstance(sqlDB, &postgres.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres driver: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("no SQL migrations for dialect %q", s.dialect)
	}
}

// GormAutoMigrateStrategy derives the schema from the persistence models.
// It is used for sqlite, where the dialect-specific scripts do not apply.
type GormAutoMigrateStrategy struct {
	models []any
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(models []any, log logger.Interface) *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{
		models: models,
		logger: log.With("component", "migration.gorm-automigrate"),
	}
}

func (s *GormAutoMigrateStrategy) Name() string {
	return "gorm_auto_migrate"
}

func (s *GormAutoMigrateStrategy) Up(db *gorm.DB) error {
	s.logger.Infow("running auto migration", "models", len(s.models))
	if err := db.AutoMigrate(s.models...); err != nil {
		s.logger.Errorw("auto migration failed", "error", err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) Down(db *gorm.DB, steps int) error {
	return ErrNotSupported
}

func (s *GormAutoMigrateStrategy) Version(db *gorm.DB) (uint, bool, error) {
	return 0, false, ErrNotSupported
}
