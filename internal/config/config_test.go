package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// Helper to clear all config-related env vars
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"LIFTER_PORT",
		"LIFTER_READ_TIMEOUT",
		"LIFTER_WRITE_TIMEOUT",
		"LIFTER_SHUTDOWN_TIMEOUT",
		"LIFTER_STORAGE_BACKEND",
		"LIFTER_DB_PATH",
		"LIFTER_REDIS_ADDR",
		"LIFTER_REDIS_PASSWORD",
		"LIFTER_REDIS_DB",
		"OPENAI_API_KEY",
		"LIFTER_PARSER_MODEL",
		"LIFTER_PARSER_TIMEOUT",
		"LIFTER_API_KEY",
		"LIFTER_LOG_LEVEL",
		"LIFTER_LOG_FORMAT",
		"LIFTER_LOG_FILE",
		"LIFTER_CONFIG_PATH",
		"LIFTER_DEV_MODE",
		"LIFTER_SNAPSHOT_DIR",
		"LIFTER_SNAPSHOT_INTERVAL",
		"LIFTER_SNAPSHOT_BUCKET",
		"LIFTER_S3_ENDPOINT",
		"LIFTER_S3_REGION",
		"LIFTER_S3_ACCESS_KEY",
		"LIFTER_S3_SECRET_KEY",
		"LIFTER_S3_USE_SSL",
		"LIFTER_S3_URL_EXPIRY",
		"LIFTER_POSTGRES_DSN",
		"LIFTER_CORS_ORIGINS",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

// Helper to point Load at a file that does not exist
func noConfigFile(t *testing.T) {
	t.Helper()
	os.Setenv("LIFTER_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
}

func dur(d time.Duration) Duration {
	return Duration(d)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	noConfigFile(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != dur(15*time.Second) {
		t.Errorf("Server.ShutdownTimeout = %v, want 15s", time.Duration(cfg.Server.ShutdownTimeout))
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, BackendSQLite)
	}
	if cfg.Storage.Path != "data/lifter.db" {
		t.Errorf("Storage.Path = %q, want data/lifter.db", cfg.Storage.Path)
	}
	if cfg.Storage.Redis.KeyPrefix != "lifter:" {
		t.Errorf("Storage.Redis.KeyPrefix = %q, want lifter:", cfg.Storage.Redis.KeyPrefix)
	}
	if cfg.Parser.Model != "gpt-4o-mini" {
		t.Errorf("Parser.Model = %q, want gpt-4o-mini", cfg.Parser.Model)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
	if cfg.Snapshot.Interval != dur(24*time.Hour) {
		t.Errorf("Snapshot.Interval = %v, want 24h", time.Duration(cfg.Snapshot.Interval))
	}
	if cfg.Snapshot.URLExpiry != dur(time.Hour) {
		t.Errorf("Snapshot.URLExpiry = %v, want 1h", time.Duration(cfg.Snapshot.URLExpiry))
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "lifter.yaml")
	content := `
server:
  port: 9090
  read_timeout: 5s
storage:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
    key_prefix: "gym:"
parser:
  model: gpt-4o
log:
  level: debug
  format: text
  file: /var/log/lifter.log
snapshot:
  interval: 1h
  bucket: backups
  endpoint: s3.local:9000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	os.Setenv("LIFTER_CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != dur(5*time.Second) {
		t.Errorf("Server.ReadTimeout = %v, want 5s", time.Duration(cfg.Server.ReadTimeout))
	}
	// Unset fields keep defaults
	if cfg.Server.WriteTimeout != dur(90*time.Second) {
		t.Errorf("Server.WriteTimeout = %v, want 90s", time.Duration(cfg.Server.WriteTimeout))
	}
	if cfg.Storage.Backend != BackendRedis {
		t.Errorf("Storage.Backend = %q, want redis", cfg.Storage.Backend)
	}
	if cfg.Storage.Redis.Addr != "redis:6379" || cfg.Storage.Redis.DB != 2 || cfg.Storage.Redis.KeyPrefix != "gym:" {
		t.Errorf("Storage.Redis = %+v", cfg.Storage.Redis)
	}
	if cfg.Parser.Model != "gpt-4o" {
		t.Errorf("Parser.Model = %q, want gpt-4o", cfg.Parser.Model)
	}
	if cfg.Log.File != "/var/log/lifter.log" {
		t.Errorf("Log.File = %q", cfg.Log.File)
	}
	if cfg.Snapshot.Bucket != "backups" || cfg.Snapshot.Interval != dur(time.Hour) {
		t.Errorf("Snapshot = %+v", cfg.Snapshot)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "lifter.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\nstorage:\n  path: /tmp/a.db\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	os.Setenv("LIFTER_CONFIG_PATH", path)
	os.Setenv("LIFTER_PORT", "7070")
	os.Setenv("LIFTER_DB_PATH", "/tmp/b.db")
	os.Setenv("LIFTER_REDIS_PASSWORD", "hunter2")
	os.Setenv("LIFTER_REDIS_DB", "3")
	os.Setenv("OPENAI_API_KEY", "sk-test")
	os.Setenv("LIFTER_S3_USE_SSL", "false")
	os.Setenv("LIFTER_SNAPSHOT_INTERVAL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Storage.Path != "/tmp/b.db" {
		t.Errorf("Storage.Path = %q, want /tmp/b.db", cfg.Storage.Path)
	}
	if cfg.Storage.Redis.Password != "hunter2" || cfg.Storage.Redis.DB != 3 {
		t.Errorf("Storage.Redis = %+v", cfg.Storage.Redis)
	}
	if cfg.Parser.APIKey != "sk-test" {
		t.Errorf("Parser.APIKey = %q, want sk-test", cfg.Parser.APIKey)
	}
	if cfg.Snapshot.UseSSL == nil || *cfg.Snapshot.UseSSL {
		t.Errorf("Snapshot.UseSSL = %v, want false", cfg.Snapshot.UseSSL)
	}
	if cfg.Snapshot.Interval != dur(30*time.Minute) {
		t.Errorf("Snapshot.Interval = %v, want 30m", time.Duration(cfg.Snapshot.Interval))
	}
}

func TestLoad_InvalidEnvIgnored(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	noConfigFile(t)
	os.Setenv("LIFTER_PORT", "not-a-number")
	os.Setenv("LIFTER_READ_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != dur(30*time.Second) {
		t.Errorf("Server.ReadTimeout = %v, want 30s", time.Duration(cfg.Server.ReadTimeout))
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown backend",
			env:     map[string]string{"LIFTER_STORAGE_BACKEND": "mongodb"},
			wantErr: "storage.backend",
		},
		{
			name:    "postgres without dsn",
			env:     map[string]string{"LIFTER_STORAGE_BACKEND": "postgres"},
			wantErr: "LIFTER_POSTGRES_DSN",
		},
		{
			name:    "bucket without endpoint",
			env:     map[string]string{"LIFTER_SNAPSHOT_BUCKET": "b"},
			wantErr: "snapshot.endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			defer clearEnv(t)
			noConfigFile(t)
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_PostgresAndCORSFromEnv(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	noConfigFile(t)
	os.Setenv("LIFTER_STORAGE_BACKEND", "postgres")
	os.Setenv("LIFTER_POSTGRES_DSN", "postgres://lifter@localhost:5432/lifter")
	os.Setenv("LIFTER_CORS_ORIGINS", "https://app.example.com, ,http://localhost:5173")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Postgres.DSN != "postgres://lifter@localhost:5432/lifter" {
		t.Errorf("Postgres.DSN = %q", cfg.Storage.Postgres.DSN)
	}
	if cfg.Storage.Postgres.MaxConns != 4 {
		t.Errorf("Postgres.MaxConns = %d, want 4", cfg.Storage.Postgres.MaxConns)
	}
	want := []string{"https://app.example.com", "http://localhost:5173"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)

	path := filepath.Join(t.TempDir(), "lifter.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	os.Setenv("LIFTER_CONFIG_PATH", path)

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("Load() error = %v, want parse error", err)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFromFile() error = nil, want error for missing file")
	}
}

func TestRequireServeSecrets(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	noConfigFile(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := cfg.RequireServeSecrets(); err == nil || !strings.Contains(err.Error(), "LIFTER_API_KEY") {
		t.Errorf("RequireServeSecrets() = %v, want LIFTER_API_KEY error", err)
	}

	cfg.Auth.APIKey = "key"
	if err := cfg.RequireServeSecrets(); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("RequireServeSecrets() = %v, want OPENAI_API_KEY error", err)
	}

	cfg.Parser.APIKey = "sk"
	if err := cfg.RequireServeSecrets(); err != nil {
		t.Errorf("RequireServeSecrets() = %v, want nil", err)
	}
}

func TestRequireServeSecrets_DevMode(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	noConfigFile(t)
	os.Setenv("LIFTER_DEV_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.RequireServeSecrets(); err != nil {
		t.Errorf("RequireServeSecrets() in dev mode = %v, want nil", err)
	}
	if err := cfg.RequireParserKey(); err != nil {
		t.Errorf("RequireParserKey() in dev mode = %v, want nil", err)
	}
}

func TestDuration_YAMLRoundTrip(t *testing.T) {
	var s struct {
		D Duration `yaml:"d"`
	}
	if err := yaml.Unmarshal([]byte("d: 90s"), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s.D != dur(90*time.Second) {
		t.Errorf("D = %v, want 90s", time.Duration(s.D))
	}

	out, err := yaml.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), "1m30s") {
		t.Errorf("Marshal() = %q, want 1m30s", out)
	}

	if err := yaml.Unmarshal([]byte("d: banana"), &s); err == nil {
		t.Error("Unmarshal() error = nil, want invalid duration")
	}
}
