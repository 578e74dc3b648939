// Package config loads the flowbuilder configuration.
//
// Precedence, lowest first: built-in defaults, the YAML (or JSON) file, a .env
// file, FLOWBUILDER_* environment variables, and finally CLI flags applied by
// the caller.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FLOWBUILDER_"

// Config is the complete service configuration.
type Config struct {
	Listen    string `yaml:"listen"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text | json

	Storage Storage `yaml:"storage"`

	Key         string        `yaml:"key"` // Snapshot slot
	Debounce    time.Duration `yaml:"debounce"`
	TypingDelay time.Duration `yaml:"typing_delay"`

	EncryptionKey  string   `yaml:"encryption_key"` // base64, 32 bytes
	FallbackKeys   []string `yaml:"fallback_keys"`
	Compress       bool     `yaml:"compress"`
	JWTSecret      string   `yaml:"jwt_secret"`
	CatalogFile    string   `yaml:"catalog_file"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Storage selects the snapshot backend.
type Storage struct {
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path"` // file backend directory
	DSN      string `yaml:"dsn"`  // sqlite / postgres
	MaxBytes int64  `yaml:"max_bytes"`
	Redis    Redis  `yaml:"redis"`
}

// Redis connection settings.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:      ":8080",
		LogLevel:    "info",
		LogFormat:   "text",
		Key:         "chatbot-flow",
		Debounce:    500 * time.Millisecond,
		TypingDelay: time.Second,
		Storage: Storage{
			Backend: BackendFile,
			Path:    ".flowbuilder/data",
			Redis: Redis{
				Addr:   "localhost:6379",
				Prefix: "flowbuilder:kv:",
			},
		},
		AllowedOrigins: []string{"*"},
	}
}

// Load reads path (optional), then dotenv (optional), then the environment.
// A missing config file is not an error; a missing explicit .env file is.
func Load(path, dotenv string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults only
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			// JSON is valid YAML, so one decoder serves both.
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil {
			return cfg, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	} else {
		_ = godotenv.Load() // .env in the working directory, if any
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"LISTEN":          &cfg.Listen,
		"LOG_LEVEL":       &cfg.LogLevel,
		"LOG_FORMAT":      &cfg.LogFormat,
		"KEY":             &cfg.Key,
		"STORAGE_BACKEND": &cfg.Storage.Backend,
		"STORAGE_PATH":    &cfg.Storage.Path,
		"STORAGE_DSN":     &cfg.Storage.DSN,
		"REDIS_ADDR":      &cfg.Storage.Redis.Addr,
		"REDIS_PASSWORD":  &cfg.Storage.Redis.Password,
		"REDIS_PREFIX":    &cfg.Storage.Redis.Prefix,
		"ENCRYPTION_KEY":  &cfg.EncryptionKey,
		"JWT_SECRET":      &cfg.JWTSecret,
		"CATALOG":         &cfg.CatalogFile,
	}
	for name, dst := range str {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"DEBOUNCE":     &cfg.Debounce,
		"TYPING_DELAY": &cfg.TypingDelay,
		"REDIS_TTL":    &cfg.Storage.Redis.TTL,
	}
	for name, dst := range durations {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = d
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "COMPRESS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCOMPRESS: %w", EnvPrefix, err)
		}
		cfg.Compress = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", EnvPrefix, err)
		}
		cfg.Storage.Redis.DB = n
	}
	if v, ok := os.LookupEnv(EnvPrefix + "FALLBACK_KEYS"); ok {
		cfg.FallbackKeys = splitList(v)
	}
	if v, ok := os.LookupEnv(EnvPrefix + "ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the configuration for inconsistencies.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	case BackendSQLite, BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage backend %q requires a dsn", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Key == "" {
		return fmt.Errorf("snapshot key cannot be empty")
	}
	if c.Debounce < 0 || c.TypingDelay < 0 {
		return fmt.Errorf("durations cannot be negative")
	}
	if c.EncryptionKey != "" {
		if _, err := DecodeKey(c.EncryptionKey); err != nil {
			return fmt.Errorf("encryption_key: %w", err)
		}
		for i, k := range c.FallbackKeys {
			if _, err := DecodeKey(k); err != nil {
				return fmt.Errorf("fallback_keys[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// DecodeKey decodes a base64 AES-256 key.
func DecodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
