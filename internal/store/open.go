package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hyperengineering/lifter/internal/config"
)

// Open returns the KV backend selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (KV, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		kv, err := NewSQLiteKV(cfg.Path)
		if err != nil {
			return nil, err
		}
		slog.Info("store initialized", "component", "store", "backend", "sqlite", "path", cfg.Path)
		return kv, nil
	case config.BackendRedis:
		kv, err := DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
		if err != nil {
			return nil, err
		}
		slog.Info("store initialized", "component", "store", "backend", "redis", "addr", cfg.Redis.Addr)
		return kv, nil
	case config.BackendPostgres:
		kv, err := DialPostgres(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		slog.Info("store initialized", "component", "store", "backend", "postgres")
		return kv, nil
	case config.BackendMemory:
		slog.Info("store initialized", "component", "store", "backend", "memory")
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
}
