package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shadowiq/shadowiq/internal/shared/constants"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

func TestNewManager_StrategyByDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"mysql", "golang_migrate"},
		{"postgres", "golang_migrate"},
		{"sqlite", "gorm_auto_migrate"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			m, err := NewManager(tt.driver, logger.NewNopLogger())
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Strategy().Name())
		})
	}

	_, err := NewManager("oracle", logger.NewNopLogger())
	assert.Error(t, err)
}

func TestSQLiteAutoMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	m, err := NewManager("sqlite", logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, m.Up(db))

	for _, table := range []string{
		constants.TableIdentities, constants.TableProjects, constants.TableProjectFiles,
		constants.TableDeliverables, constants.TableMessages, constants.TableAuditLog,
		constants.TableDownloadTokens,
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	_, err = m.Status(db)
	assert.ErrorIs(t, err, ErrNotSupported)
}

// Both dialects must ship the same migration sequence.
func TestEmbeddedScriptsArePaired(t *testing.T) {
	names := func(dialect string) []string {
		entries, err := fs.ReadDir(Scripts(), "scripts/"+dialect)
		require.NoError(t, err)
		var out []string
		for _, e := range entries {
			out = append(out, e.Name())
		}
		return out
	}

	mysqlFiles := names("mysql")
	require.NotEmpty(t, mysqlFiles)
	assert.Equal(t, mysqlFiles, names("postgres"))

	for _, name := range mysqlFiles {
		assert.True(t, strings.HasSuffix(name, ".up.sql") || strings.HasSuffix(name, ".down.sql"), name)
	}
}

func TestGenerator_CreateMigration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mysql"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mysql", "000001_init_schema.up.sql"), nil, 0o644))

	g := NewGenerator(dir, logger.NewNopLogger())
	created, err := g.CreateMigration("add_project_tags")
	require.NoError(t, err)
	require.Len(t, created, 4)

	assert.FileExists(t, filepath.Join(dir, "mysql", "000002_add_project_tags.up.sql"))
	assert.FileExists(t, filepath.Join(dir, "postgres", "000001_add_project_tags.down.sql"))

	_, err = g.CreateMigration("Bad Name")
	assert.Error(t, err)
}
