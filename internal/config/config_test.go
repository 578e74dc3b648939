package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "flowbuilder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9090"
debounce: 250ms
storage:
  backend: redis
  redis:
    addr: "cache:6379"
    ttl: 1h
`), 0644))

	t.Setenv("FLOWBUILDER_LISTEN", ":7070")
	t.Setenv("FLOWBUILDER_COMPRESS", "true")
	t.Setenv("FLOWBUILDER_ALLOWED_ORIGINS", "https://admin.example.com, https://cms.example.com")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Listen, "env overrides the file")
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Storage.Redis.TTL)
	assert.True(t, cfg.Compress)
	assert.Equal(t, []string{"https://admin.example.com", "https://cms.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_DotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("FLOWBUILDER_KEY=staging-flow\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("FLOWBUILDER_KEY") })

	cfg, err := Load("", dotenv)
	require.NoError(t, err)
	assert.Equal(t, "staging-flow", cfg.Key)

	_, err = Load("", filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	good := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	short := base64.StdEncoding.EncodeToString([]byte("short"))

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "floppy" }, true},
		{"sqlite without dsn", func(c *Config) { c.Storage.Backend = BackendSQLite }, true},
		{"sqlite with dsn", func(c *Config) { c.Storage.Backend = BackendSQLite; c.Storage.DSN = "flow.db" }, false},
		{"empty key", func(c *Config) { c.Key = "" }, true},
		{"good encryption key", func(c *Config) { c.EncryptionKey = good }, false},
		{"short encryption key", func(c *Config) { c.EncryptionKey = short }, true},
		{"bad fallback key", func(c *Config) { c.EncryptionKey = good; c.FallbackKeys = []string{"!!"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
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
