package kv

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"smartreads/internal/config"
)

// Backends carries the shared connections a store may be built on.
type Backends struct {
	Redis    *redis.Client
	Postgres *pgxpool.Pool
}

func Open(ctx context.Context, cfg config.KVConfig, b Backends) (Store, error) {
	switch cfg.Backend {
	case config.KVBackendMemory:
		return NewMemoryStore(), nil
	case config.KVBackendSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.KVBackendRedis:
		if b.Redis == nil {
			return nil, fmt.Errorf("kv backend redis: no redis client")
		}
		return NewRedisStore(b.Redis), nil
	case config.KVBackendPostgres:
		if b.Postgres == nil {
			return nil, fmt.Errorf("kv backend postgres: no pool")
		}
		return NewPostgresStore(ctx, b.Postgres)
	default:
		return nil, fmt.Errorf("unknown kv backend %q", cfg.Backend)
	}
}
