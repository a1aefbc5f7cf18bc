// Package config provides configuration management for the inkstand content store.
// Configuration can be loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Seed    SeedConfig    `mapstructure:"seed"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	// Backend is one of "memory", "sqlite", "redis", "postgres" or "s3".
	Backend string `mapstructure:"backend"`

	// KeyPrefix is prepended to every logical key (e.g. "admin_" + "articles").
	KeyPrefix string `mapstructure:"key_prefix"`

	// LockTTL bounds how long a read-modify-write may hold its key lock.
	LockTTL time.Duration `mapstructure:"lock_ttl"`

	// LockRetries and LockRetryDelay control lock acquisition backoff.
	LockRetries    int           `mapstructure:"lock_retries"`
	LockRetryDelay time.Duration `mapstructure:"lock_retry_delay"`

	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	S3       S3Config       `mapstructure:"s3"`
}

// SQLiteConfig holds embedded database settings.
type SQLiteConfig struct {
	Path            string `mapstructure:"path"`             // Path to SQLite database file
	JournalMode     string `mapstructure:"journal_mode"`     // WAL, DELETE, TRUNCATE, etc.
	BusyTimeout     int    `mapstructure:"busy_timeout"`     // Milliseconds to wait for locks
	SynchronousMode string `mapstructure:"synchronous_mode"` // NORMAL, FULL, OFF
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// Addr returns the Redis address in host:port format.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// DSN returns the PostgreSQL connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// S3Config holds object-store backend settings.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// Hasher selects the algorithm for new password hashes: "bcrypt" or "sha256".
	// Verification accepts either format regardless of this setting.
	Hasher string `mapstructure:"hasher"`

	// PasswordSalt is appended to passwords by the salted SHA-256 hasher.
	PasswordSalt string `mapstructure:"password_salt"`

	// BcryptCost is the bcrypt work factor.
	BcryptCost int `mapstructure:"bcrypt_cost"`

	// SessionTTL is the lifetime of a normal session.
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	// RememberMeTTL is the lifetime of a "remember me" session.
	RememberMeTTL time.Duration `mapstructure:"remember_me_ttl"`

	// MaxLoginAttempts within LoginWindow before an identifier is rate limited.
	MaxLoginAttempts int           `mapstructure:"max_login_attempts"`
	LoginWindow      time.Duration `mapstructure:"login_window"`
}

// SeedConfig holds first-run bootstrap settings.
type SeedConfig struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`

	// SamplePageViews generates 30 days of synthetic traffic when no page views exist.
	SamplePageViews bool `mapstructure:"sample_page_views"`

	// SampleSeed makes the synthetic traffic reproducible when non-zero.
	SampleSeed uint64 `mapstructure:"sample_seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled determines if metrics collection is active.
	Enabled bool `mapstructure:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace"`
}

// Load reads configuration from the specified file and environment variables.
// Environment variables take precedence over file values.
// Environment variables are prefixed with INKSTAND_ and use _ as separator.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("INKSTAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bootstrap credentials keep their historical, unprefixed names.
	_ = v.BindEnv("seed.admin_email", "INKSTAND_SEED_ADMIN_EMAIL", "ADMIN_EMAIL")
	_ = v.BindEnv("seed.admin_username", "INKSTAND_SEED_ADMIN_USERNAME", "ADMIN_USERNAME")
	_ = v.BindEnv("seed.admin_password", "INKSTAND_SEED_ADMIN_PASSWORD", "ADMIN_PASSWORD")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/inkstand")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Storage defaults
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.key_prefix", "admin_")
	v.SetDefault("storage.lock_ttl", 5*time.Second)
	v.SetDefault("storage.lock_retries", 50)
	v.SetDefault("storage.lock_retry_delay", 10*time.Millisecond)

	v.SetDefault("storage.sqlite.path", "./data/inkstand.db")
	v.SetDefault("storage.sqlite.journal_mode", "WAL")
	v.SetDefault("storage.sqlite.busy_timeout", 5000)
	v.SetDefault("storage.sqlite.synchronous_mode", "NORMAL")

	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.dial_timeout", 5*time.Second)

	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.user", "inkstand")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.database", "inkstand")
	v.SetDefault("storage.postgres.ssl_mode", "prefer")
	v.SetDefault("storage.postgres.max_conns", 4)

	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.prefix", "inkstand/")
	v.SetDefault("storage.s3.use_path_style", false)

	// Auth defaults
	v.SetDefault("auth.hasher", "bcrypt")
	v.SetDefault("auth.password_salt", "salt_admin_dashboard_2024")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.remember_me_ttl", 30*24*time.Hour)
	v.SetDefault("auth.max_login_attempts", 5)
	v.SetDefault("auth.login_window", 15*time.Minute)

	// Seed defaults
	v.SetDefault("seed.admin_email", "admin@achutslegal.com")
	v.SetDefault("seed.admin_username", "admin")
	v.SetDefault("seed.admin_password", "admin123!")
	v.SetDefault("seed.sample_page_views", true)
	v.SetDefault("seed.sample_seed", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "inkstand")
}

// bcryptMaxPasswordBytes mirrors the input limit of golang.org/x/crypto/bcrypt.
const bcryptMaxPasswordBytes = 72

// Validate checks the configuration for required values and valid ranges.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory":
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required for sqlite backend")
		}
	case "redis":
		if c.Storage.Redis.Host == "" {
			return fmt.Errorf("storage.redis.host is required for redis backend")
		}
	case "postgres":
		if c.Storage.Postgres.Host == "" {
			return fmt.Errorf("storage.postgres.host is required for postgres backend")
		}
		if c.Storage.Postgres.Database == "" {
			return fmt.Errorf("storage.postgres.database is required for postgres backend")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for s3 backend")
		}
	default:
		return fmt.Errorf("storage.backend must be one of: memory, sqlite, redis, postgres, s3")
	}

	if c.Storage.LockTTL <= 0 {
		return fmt.Errorf("storage.lock_ttl must be positive")
	}

	switch c.Auth.Hasher {
	case "bcrypt", "sha256":
	default:
		return fmt.Errorf("auth.hasher must be 'bcrypt' or 'sha256'")
	}
	if c.Auth.Hasher == "sha256" && c.Auth.PasswordSalt == "" {
		return fmt.Errorf("auth.password_salt is required for sha256 hasher")
	}
	if c.Auth.SessionTTL <= 0 || c.Auth.RememberMeTTL <= 0 {
		return fmt.Errorf("auth.session_ttl and auth.remember_me_ttl must be positive")
	}
	if c.Auth.MaxLoginAttempts < 1 {
		return fmt.Errorf("auth.max_login_attempts must be at least 1")
	}
	if c.Auth.LoginWindow <= 0 {
		return fmt.Errorf("auth.login_window must be positive")
	}

	if c.Seed.AdminUsername == "" || c.Seed.AdminPassword == "" {
		return fmt.Errorf("seed.admin_username and seed.admin_password are required")
	}
	if c.Auth.Hasher == "bcrypt" && len(c.Seed.AdminPassword) > bcryptMaxPasswordBytes {
		return fmt.Errorf("seed.admin_password must be at most %d bytes for bcrypt hasher", bcryptMaxPasswordBytes)
	}

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, fatal, panic")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
