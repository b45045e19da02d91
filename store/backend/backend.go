// Package backend opens the configured report store.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallnest/pitchgraph/store"
	"github.com/smallnest/pitchgraph/store/memory"
	"github.com/smallnest/pitchgraph/store/postgres"
	"github.com/smallnest/pitchgraph/store/redis"
	"github.com/smallnest/pitchgraph/store/sqlite"
)

// Supported backends.
const (
	KindMemory   = "memory"
	KindSQLite   = "sqlite"
	KindRedis    = "redis"
	KindPostgres = "postgres"
)

// ErrUnknownBackend is returned for an unsupported backend kind.
var ErrUnknownBackend = errors.New("unknown report backend")

// Config selects and configures a report backend.
type Config struct {
	Kind string

	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RedisTTL      time.Duration

	PostgresDSN   string
	PostgresTable string
}

// Open returns the backend named by cfg.Kind. An empty kind means memory.
func Open(ctx context.Context, cfg Config) (store.ReportStore, error) {
	switch cfg.Kind {
	case "", KindMemory:
		return memory.NewReportStore(), nil
	case KindSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("sqlite backend requires a path")
		}
		return sqlite.NewReportStore(sqlite.Options{Path: cfg.SQLitePath})
	case KindRedis:
		return redis.NewReportStore(redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			TTL:      cfg.RedisTTL,
		}), nil
	case KindPostgres:
		return postgres.NewReportStore(ctx, postgres.Options{
			ConnString: cfg.PostgresDSN,
			TableName:  cfg.PostgresTable,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Kind)
	}
}
