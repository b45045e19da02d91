package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// RedisStore keeps one ephemeral collection in a single Redis hash.
// Each field is a chunk id; the value holds the chunk text, metadata and vector.
// Scoring happens client-side so plain Redis (no search module) is enough.
type RedisStore struct {
	client   redis.UniversalClient
	key      string
	ttl      time.Duration
	embedder embeddings.Embedder
}

var _ Store = (*RedisStore)(nil)

type redisChunk struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Vector   []float32      `json:"vector"`
}

// NewRedisStore creates a collection under prefix with a fresh uuid.
// A positive ttl bounds how long an abandoned collection survives.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration, embedder embeddings.Embedder) *RedisStore {
	if prefix == "" {
		prefix = "pitchgraph:"
	}
	return &RedisStore{
		client:   client,
		key:      fmt.Sprintf("%scollection:%s", prefix, uuid.NewString()),
		ttl:      ttl,
		embedder: embedder,
	}
}

// Key returns the hash key backing this collection.
func (s *RedisStore) Key() string {
	return s.key
}

// AddDocuments embeds docs and writes them into the collection hash.
func (s *RedisStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	vectors, err := embedDocuments(ctx, s.embedder, docs, options)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []string{}, nil
	}

	ids := make([]string, len(docs))
	pipe := s.client.TxPipeline()
	for i, doc := range docs {
		data, err := json.Marshal(redisChunk{
			Content:  doc.PageContent,
			Metadata: doc.Metadata,
			Vector:   vectors[i],
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal chunk: %w", err)
		}
		ids[i] = uuid.NewString()
		pipe.HSet(ctx, s.key, ids[i], data)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to save chunks to redis: %w", err)
	}
	return ids, nil
}

// SimilaritySearch loads the collection and ranks it against the query vector.
func (s *RedisStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := parseOptions(options)
	queryVec, err := embedQuery(ctx, s.embedder, query, opts)
	if err != nil {
		return nil, err
	}

	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks from redis: %w", err)
	}

	candidates := make([]schema.Document, 0, len(fields))
	for id, raw := range fields {
		var chunk redisChunk
		if err := json.Unmarshal([]byte(raw), &chunk); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chunk %s: %w", id, err)
		}
		candidates = append(candidates, schema.Document{
			PageContent: chunk.Content,
			Metadata:    chunk.Metadata,
			Score:       float32(cosineSimilarity32(queryVec, chunk.Vector)),
		})
	}
	return topK(candidates, numDocuments, opts.ScoreThreshold), nil
}

// Close deletes the collection hash.
func (s *RedisStore) Close(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to drop redis collection: %w", err)
	}
	return nil
}
