package config

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN returns the driver-specific connection string. For sqlite the
// database field is the file path (or ":memory:").
func (d *DatabaseConfig) GetDSN() string {
	switch d.Driver {
	case "postgres":
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Database, sslMode)
	case "sqlite":
		return d.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC&multiStatements=true",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	TTLHours   int    `mapstructure:"ttl_hours"`
	Domain     string `mapstructure:"domain"`
	Path       string `mapstructure:"path"`
	Secure     bool   `mapstructure:"secure"`
	SameSite   string `mapstructure:"same_site"`
}

func (s *SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

type MagicLinkConfig struct {
	TTLHours          int  `mapstructure:"ttl_hours"`
	DisplayLink       bool `mapstructure:"display_link"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour"`
}

type AuthConfig struct {
	MagicLink MagicLinkConfig `mapstructure:"magic_link"`
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type StorageConfig struct {
	Driver             string `mapstructure:"driver"`
	Bucket             string `mapstructure:"bucket"`
	Region             string `mapstructure:"region"`
	Endpoint           string `mapstructure:"endpoint"`
	AccessKeyID        string `mapstructure:"access_key_id"`
	SecretAccessKey    string `mapstructure:"secret_access_key"`
	LocalRoot          string `mapstructure:"local_root"`
	MaxUploadSize      int64  `mapstructure:"max_upload_size"`
	UploadURLTTLSecs   int    `mapstructure:"upload_url_ttl_secs"`
	DownloadURLTTLSecs int    `mapstructure:"download_url_ttl_secs"`
}

func (s *StorageConfig) UploadURLTTL() time.Duration {
	return time.Duration(s.UploadURLTTLSecs) * time.Second
}

func (s *StorageConfig) DownloadURLTTL() time.Duration {
	return time.Duration(s.DownloadURLTTLSecs) * time.Second
}

type PaymentConfig struct {
	StripeSecretKey     string `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret string `mapstructure:"stripe_webhook_secret"`
	Currency            string `mapstructure:"currency"`
	PlatformFeePercent  int    `mapstructure:"platform_fee_percent"`
}

type CollaboratorsConfig struct {
	TimeoutSecs int `mapstructure:"timeout_secs"`
}

func (c *CollaboratorsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

type ProjectConfig struct {
	CodePrefix string `mapstructure:"code_prefix"`
}

type SecurityConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

// DeriveKey derives a 32-byte key for a single purpose (for example
// "storage-url-signing") from the master secret using HKDF-SHA256.
func (s *SecurityConfig) DeriveKey(purpose string) ([]byte, error) {
	if s.SecretKey == "" {
		return nil, fmt.Errorf("security.secret_key is not configured")
	}
	reader := hkdf.New(sha256.New, []byte(s.SecretKey), nil, []byte("shadowiq:"+purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive %s key: %w", purpose, err)
	}
	return key, nil
}
