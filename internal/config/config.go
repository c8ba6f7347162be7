package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Parser   ParserConfig   `yaml:"parser"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// ServerConfig contains HTTP server settings. CORSOrigins lists the browser
// origins allowed to call the API; empty disables CORS.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Backend  string         `yaml:"backend"`
	Path     string         `yaml:"path"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"-"` // env-only
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	DSN      string `yaml:"-"` // env-only, may carry a password
	MaxConns int32  `yaml:"max_conns"`
}

// ParserConfig contains AI plan parser settings.
type ParserConfig struct {
	APIKey  string   `yaml:"-"` // env-only, never in YAML
	Model   string   `yaml:"model"`
	Timeout Duration `yaml:"timeout"`
}

// AuthConfig contains HTTP API authentication settings.
type AuthConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
}

// LogConfig contains logging settings. When File is set, logs are also
// written to a rotated file.
type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// SnapshotConfig contains collection backup settings. An empty Bucket keeps
// backups local.
type SnapshotConfig struct {
	Dir       string   `yaml:"dir"`
	Interval  Duration `yaml:"interval"`
	Bucket    string   `yaml:"bucket"`
	Endpoint  string   `yaml:"endpoint"`
	Region    string   `yaml:"region"`
	AccessKey string   `yaml:"-"`
	SecretKey string   `yaml:"-"`
	UseSSL    *bool    `yaml:"use_ssl"`
	URLExpiry Duration `yaml:"url_expiry"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("LIFTER_CONFIG_PATH", "config/lifter.yaml")

	// Missing file is not an error
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path, which must exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(90 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    "data/lifter.db",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "lifter:",
			},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Parser: ParserConfig{
			Model:   "gpt-4o-mini",
			Timeout: Duration(60 * time.Second),
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "json",
			MaxSizeMB: 50,
		},
		Snapshot: SnapshotConfig{
			Dir:       "data/snapshots",
			Interval:  Duration(24 * time.Hour),
			URLExpiry: Duration(time.Hour),
		},
	}
}

func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("LIFTER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	setDuration("LIFTER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("LIFTER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("LIFTER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if v := os.Getenv("LIFTER_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	// Storage
	setString("LIFTER_STORAGE_BACKEND", &cfg.Storage.Backend)
	setString("LIFTER_DB_PATH", &cfg.Storage.Path)
	setString("LIFTER_REDIS_ADDR", &cfg.Storage.Redis.Addr)
	setString("LIFTER_REDIS_PASSWORD", &cfg.Storage.Redis.Password)
	if v := os.Getenv("LIFTER_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Redis.DB = n
		}
	}
	setString("LIFTER_POSTGRES_DSN", &cfg.Storage.Postgres.DSN)

	// Parser (OPENAI_API_KEY is industry convention)
	setString("OPENAI_API_KEY", &cfg.Parser.APIKey)
	setString("LIFTER_PARSER_MODEL", &cfg.Parser.Model)
	setDuration("LIFTER_PARSER_TIMEOUT", &cfg.Parser.Timeout)

	// Auth
	setString("LIFTER_API_KEY", &cfg.Auth.APIKey)

	// Log
	setString("LIFTER_LOG_LEVEL", &cfg.Log.Level)
	setString("LIFTER_LOG_FORMAT", &cfg.Log.Format)
	setString("LIFTER_LOG_FILE", &cfg.Log.File)

	// Snapshot
	setString("LIFTER_SNAPSHOT_DIR", &cfg.Snapshot.Dir)
	setDuration("LIFTER_SNAPSHOT_INTERVAL", &cfg.Snapshot.Interval)
	setString("LIFTER_SNAPSHOT_BUCKET", &cfg.Snapshot.Bucket)
	setString("LIFTER_S3_ENDPOINT", &cfg.Snapshot.Endpoint)
	setString("LIFTER_S3_REGION", &cfg.Snapshot.Region)
	setString("LIFTER_S3_ACCESS_KEY", &cfg.Snapshot.AccessKey)
	setString("LIFTER_S3_SECRET_KEY", &cfg.Snapshot.SecretKey)
	if v := os.Getenv("LIFTER_S3_USE_SSL"); v != "" {
		useSSL := v == "true" || v == "1"
		cfg.Snapshot.UseSSL = &useSSL
	}
	setDuration("LIFTER_S3_URL_EXPIRY", &cfg.Snapshot.URLExpiry)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

// validate checks structural settings. Secrets are checked separately since
// most CLI commands never need them.
func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be one of sqlite, redis, postgres, memory (got %q)", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.Path == "" {
		return errors.New("storage.path is required for the sqlite backend")
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.Postgres.DSN == "" {
		return errors.New("LIFTER_POSTGRES_DSN is required for the postgres backend")
	}
	if c.Snapshot.Bucket != "" && c.Snapshot.Endpoint == "" {
		return errors.New("snapshot.endpoint is required when snapshot.bucket is set")
	}
	return nil
}

// RequireServeSecrets checks the keys needed by the HTTP server.
// In dev mode (LIFTER_DEV_MODE=true) the check is skipped.
func (c *Config) RequireServeSecrets() error {
	if os.Getenv("LIFTER_DEV_MODE") == "true" {
		return nil
	}
	if c.Auth.APIKey == "" {
		return errors.New("LIFTER_API_KEY is required")
	}
	return c.RequireParserKey()
}

// RequireParserKey checks the key needed to import plans.
func (c *Config) RequireParserKey() error {
	if os.Getenv("LIFTER_DEV_MODE") == "true" {
		return nil
	}
	if c.Parser.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	return nil
}

// splitList splits a comma-separated env value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
