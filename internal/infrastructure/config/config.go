package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/shadowiq/shadowiq/internal/shared/config"
)

type Config struct {
	Server        sharedConfig.ServerConfig        `mapstructure:"server"`
	Database      sharedConfig.DatabaseConfig      `mapstructure:"database"`
	Logger        sharedConfig.LoggerConfig        `mapstructure:"logger"`
	Redis         sharedConfig.RedisConfig         `mapstructure:"redis"`
	Session       sharedConfig.SessionConfig       `mapstructure:"session"`
	Auth          sharedConfig.AuthConfig          `mapstructure:"auth"`
	Email         sharedConfig.EmailConfig         `mapstructure:"email"`
	Storage       sharedConfig.StorageConfig       `mapstructure:"storage"`
	Payment       sharedConfig.PaymentConfig       `mapstructure:"payment"`
	Collaborators sharedConfig.CollaboratorsConfig `mapstructure:"collaborators"`
	Project       sharedConfig.ProjectConfig       `mapstructure:"project"`
	Security      sharedConfig.SecurityConfig      `mapstructure:"security"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables. A missing
// config file is not an error: defaults plus SHADOWIQ_* variables are enough
// to run. configPath, when set, overrides the search path.
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("SHADOWIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "shadowiq_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.cookie_name", "siq_session")
	v.SetDefault("session.ttl_hours", 24*14)
	v.SetDefault("session.path", "/")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.same_site", "Lax")

	v.SetDefault("auth.magic_link.ttl_hours", 24)
	v.SetDefault("auth.magic_link.display_link", false)
	v.SetDefault("auth.magic_link.requests_per_minute", 5)
	v.SetDefault("auth.magic_link.requests_per_hour", 30)

	v.SetDefault("email.enabled", true)
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.from_address", "noreply@shadowiq.local")
	v.SetDefault("email.from_name", "ShadowIQ")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.local_root", "./data/objects")
	v.SetDefault("storage.max_upload_size", 100*1024*1024)
	v.SetDefault("storage.upload_url_ttl_secs", 3600)
	v.SetDefault("storage.download_url_ttl_secs", 3600)

	v.SetDefault("payment.currency", "usd")
	v.SetDefault("payment.platform_fee_percent", 20)

	v.SetDefault("collaborators.timeout_secs", 10)

	v.SetDefault("project.code_prefix", "SIQ")

	v.SetDefault("security.secret_key", "change-me-in-production")
}
