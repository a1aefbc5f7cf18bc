package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "admin_", cfg.Storage.KeyPrefix)
	assert.Equal(t, "bcrypt", cfg.Auth.Hasher)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RememberMeTTL)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginWindow)
	assert.Equal(t, "admin", cfg.Seed.AdminUsername)
	assert.True(t, cfg.Seed.SamplePageViews)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inkstand.yaml")
	yaml := []byte(`
storage:
  backend: memory
auth:
  max_login_attempts: 3
logging:
  level: debug
  format: console
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("INKSTAND_AUTH_LOGIN_WINDOW", "30m")
	t.Setenv("ADMIN_USERNAME", "owner")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 3, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LoginWindow)
	assert.Equal(t, "owner", cfg.Seed.AdminUsername)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Storage: StorageConfig{Backend: "memory", LockTTL: time.Second},
			Auth: AuthConfig{
				Hasher:           "bcrypt",
				SessionTTL:       time.Hour,
				RememberMeTTL:    time.Hour,
				MaxLoginAttempts: 5,
				LoginWindow:      time.Minute,
			},
			Seed:    SeedConfig{AdminUsername: "admin", AdminPassword: "pw"},
			Logging: LoggingConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "etcd" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Storage.Backend = "sqlite" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Storage.Backend = "s3" }, wantErr: true},
		{name: "unknown hasher", mutate: func(c *Config) { c.Auth.Hasher = "md5" }, wantErr: true},
		{name: "sha256 without salt", mutate: func(c *Config) { c.Auth.Hasher = "sha256" }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.Auth.MaxLoginAttempts = 0 }, wantErr: true},
		{name: "missing admin password", mutate: func(c *Config) { c.Seed.AdminPassword = "" }, wantErr: true},
		{name: "admin password over bcrypt limit", mutate: func(c *Config) { c.Seed.AdminPassword = strings.Repeat("p", 73) }, wantErr: true},
		{name: "long admin password with sha256", mutate: func(c *Config) {
			c.Auth.Hasher = "sha256"
			c.Auth.PasswordSalt = "salt"
			c.Seed.AdminPassword = strings.Repeat("p", 73)
		}},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDSNAndAddr(t *testing.T) {
	pg := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", pg.DSN())

	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
