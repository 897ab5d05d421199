// Package bootstrap loads configuration, the logger and the database for
// CLI commands.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/shadowiq/shadowiq/internal/infrastructure/config"
	"github.com/shadowiq/shadowiq/internal/infrastructure/database"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// Env is what a command needs after startup.
type Env struct {
	Name   string
	Config *config.Config
	Log    logger.Interface
}

// ResolveEnv lets the ENV variable override the --env flag.
func ResolveEnv(flag string) string {
	if envVar := os.Getenv("ENV"); envVar != "" {
		return envVar
	}
	return flag
}

// Init loads config, initializes the process logger and opens the
// database. Callers close it with database.Close.
func Init(env, configPath string) (*Env, error) {
	env = ResolveEnv(env)

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, MapEnvToGinMode(env) == "debug"); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Env{Name: env, Config: cfg, Log: log}, nil
}

// MapEnvToGinMode maps an environment name to a gin mode.
func MapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod":
		return "release"
	case "development", "dev":
		return "debug"
	case "test", "testing":
		return "test"
	case "debug":
		return "debug"
	case "release":
		return "release"
	default:
		return "debug"
	}
}
