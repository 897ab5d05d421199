package migration

import (
	"embed"
	"fmt"

	"gorm.io/gorm"

	"github.com/shadowiq/shadowiq/internal/infrastructure/database"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

//go:embed scripts
var scripts embed.FS

// Scripts returns the embedded SQL migrations, one directory per dialect.
func Scripts() embed.FS {
	return scripts
}

// Status describes the schema state reported by `migrate status`.
type Status struct {
	Strategy string
	Version  uint
	Dirty    bool
}

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks the strategy for a database driver: versioned SQL for
// mysql and postgres, model-driven auto migration for sqlite.
func NewManager(driver string, log logger.Interface) (*Manager, error) {
	var strategy Strategy
	switch driver {
	case database.DriverMySQL, "":
		strategy = NewGolangMigrateStrategy(database.DriverMySQL, scripts, log)
	case database.DriverPostgres:
		strategy = NewGolangMigrateStrategy(database.DriverPostgres, scripts, log)
	case database.DriverSQLite:
		strategy = NewGormAutoMigrateStrategy(AutoMigrateModels(), log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return NewManagerWithStrategy(strategy, log), nil
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   log.With("component", "migration.manager"),
	}
}

func (m *Manager) Up(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.Name())
	if err := m.strategy.Up(db); err != nil {
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.Name(), err)
	}
	m.logger.Infow("database migration completed", "strategy", m.strategy.Name())
	return nil
}

func (m *Manager) Down(db *gorm.DB, steps int) error {
	if err := m.strategy.Down(db, steps); err != nil {
		return fmt.Errorf("rollback failed with strategy %s: %w", m.strategy.Name(), err)
	}
	return nil
}

func (m *Manager) Status(db *gorm.DB) (Status, error) {
	v, dirty, err := m.strategy.Version(db)
	if err != nil {
		return Status{Strategy: m.strategy.Name()}, err
	}
	return Status{Strategy: m.strategy.Name(), Version: v, Dirty: dirty}, nil
}

// Strategy returns the current migration strategy
func (m *Manager) Strategy() Strategy {
	return m.strategy
}
