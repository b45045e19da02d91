package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/vectorstores"
)

// Store is an ephemeral vector store. Close releases the collection.
type Store interface {
	vectorstores.VectorStore
	Close(ctx context.Context) error
}

// Supported store kinds.
const (
	KindMemory   = "memory"
	KindRedis    = "redis"
	KindPgVector = "pgvector"
)

// ErrUnknownStore is returned for an unsupported store kind.
var ErrUnknownStore = errors.New("unknown vector store")

// RedisConfig configures the redis store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// PostgresConfig configures the pgvector store.
type PostgresConfig struct {
	DSN   string
	Table string
}

// Config selects and configures a store kind.
type Config struct {
	Kind     string
	Redis    RedisConfig
	Postgres PostgresConfig
}

// Factory hands out one ephemeral Store per request over shared connections.
type Factory struct {
	kind  string
	redis redis.UniversalClient
	pool  DBPool
	cfg   Config
}

// NewFactory opens the connections the configured kind needs.
func NewFactory(ctx context.Context, cfg Config) (*Factory, error) {
	f := &Factory{kind: cfg.Kind, cfg: cfg}
	if f.kind == "" {
		f.kind = KindMemory
	}

	switch f.kind {
	case KindMemory:
	case KindRedis:
		f.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case KindPgVector:
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("unable to create connection pool: %w", err)
		}
		table := cfg.Postgres.Table
		if table == "" {
			table = DefaultPgVectorTable
		}
		if err := InitPgVectorSchema(ctx, pool, table); err != nil {
			pool.Close()
			return nil, err
		}
		f.pool = pool
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Kind)
	}
	return f, nil
}

// NewFactoryWithClients builds a Factory over existing connections.
// Either client may be nil when the kind does not need it.
func NewFactoryWithClients(cfg Config, client redis.UniversalClient, pool DBPool) (*Factory, error) {
	f := &Factory{kind: cfg.Kind, cfg: cfg, redis: client, pool: pool}
	if f.kind == "" {
		f.kind = KindMemory
	}
	switch f.kind {
	case KindMemory:
	case KindRedis:
		if client == nil {
			return nil, errors.New("redis store requires a client")
		}
	case KindPgVector:
		if pool == nil {
			return nil, errors.New("pgvector store requires a pool")
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Kind)
	}
	return f, nil
}

// Kind reports the configured store kind.
func (f *Factory) Kind() string {
	return f.kind
}

// New returns a fresh, empty collection.
func (f *Factory) New(embedder embeddings.Embedder) Store {
	switch f.kind {
	case KindRedis:
		return NewRedisStore(f.redis, f.cfg.Redis.Prefix, f.cfg.Redis.TTL, embedder)
	case KindPgVector:
		return NewPgVectorStore(f.pool, f.cfg.Postgres.Table, embedder)
	default:
		return NewMemoryStore(embedder)
	}
}

// Close releases the shared connections.
func (f *Factory) Close() error {
	var errs []error
	if f.redis != nil {
		errs = append(errs, f.redis.Close())
	}
	if f.pool != nil {
		f.pool.Close()
	}
	return errors.Join(errs...)
}
