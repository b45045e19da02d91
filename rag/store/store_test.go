package store

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_Kinds(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	pool, err := pgxmock.NewPool()
	require.NoError(t, err)

	embedder := NewMockEmbedder(4)

	f, err := NewFactoryWithClients(Config{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, KindMemory, f.Kind())
	assert.IsType(t, &MemoryStore{}, f.New(embedder))

	f, err = NewFactoryWithClients(Config{Kind: KindRedis}, client, nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, f.New(embedder))
	assert.NoError(t, f.Close())

	f, err = NewFactoryWithClients(Config{Kind: KindPgVector}, nil, pool)
	require.NoError(t, err)
	assert.IsType(t, &PgVectorStore{}, f.New(embedder))
}

func TestFactory_Errors(t *testing.T) {
	_, err := NewFactoryWithClients(Config{Kind: "chroma"}, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownStore)

	_, err = NewFactoryWithClients(Config{Kind: KindRedis}, nil, nil)
	assert.Error(t, err)

	_, err = NewFactoryWithClients(Config{Kind: KindPgVector}, nil, nil)
	assert.Error(t, err)
}
