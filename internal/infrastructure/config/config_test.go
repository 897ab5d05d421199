package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "siq_session", cfg.Session.CookieName)
	assert.Equal(t, 14*24*time.Hour, cfg.Session.TTL())
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 10*time.Second, cfg.Collaborators.Timeout())
	assert.Equal(t, "SIQ", cfg.Project.CodePrefix)
	assert.Same(t, cfg, Get())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
database:
  driver: sqlite
  database: ":memory:"
payment:
  currency: eur
`), 0o600))

	t.Setenv("SHADOWIQ_PAYMENT_PLATFORM_FEE_PERCENT", "15")

	cfg, err := Load("production", path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Mode)
	assert.Equal(t, ":memory:", cfg.Database.GetDSN())
	assert.Equal(t, "eur", cfg.Payment.Currency)
	assert.Equal(t, 15, cfg.Payment.PlatformFeePercent)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
