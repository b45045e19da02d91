package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	s := NewRedisStore(client, "test:", time.Minute, NewMockEmbedder(16))
	assert.True(t, strings.HasPrefix(s.Key(), "test:collection:"))

	ids, err := s.AddDocuments(ctx, chunks("market is huge", "team of two founders", "burn rate is low"))
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.True(t, mr.Exists(s.Key()))
	assert.Equal(t, time.Minute, mr.TTL(s.Key()))

	docs, err := s.SimilaritySearch(ctx, "burn rate is low", 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "burn rate is low", docs[0].PageContent)
	assert.EqualValues(t, 2, docs[0].Metadata["chunk"])

	require.NoError(t, s.Close(ctx))
	assert.False(t, mr.Exists(s.Key()))
}

func TestRedisStore_CollectionsAreIsolated(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	a := NewRedisStore(client, "", 0, NewMockEmbedder(8))
	b := NewRedisStore(client, "", 0, NewMockEmbedder(8))

	_, err = a.AddDocuments(ctx, chunks("only in a"))
	require.NoError(t, err)

	docs, err := b.SimilaritySearch(ctx, "only in a", 4)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRedisStore_EmptyAdd(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStore(client, "", 0, NewMockEmbedder(8))
	ids, err := s.AddDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
