package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// DBPool is the subset of pgxpool.Pool used by the Postgres stores.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// DefaultPgVectorTable is used when no table name is configured.
const DefaultPgVectorTable = "pitchgraph_chunks"

// InitPgVectorSchema creates the pgvector extension and the chunk table.
func InitPgVectorSchema(ctx context.Context, pool DBPool, table string) error {
	query := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB,
			embedding vector NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_collection ON %s (collection);
	`, table, table, table)

	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create pgvector schema: %w", err)
	}
	return nil
}

// PgVectorStore keeps one ephemeral collection as a row set in a shared pgvector table.
// Ranking is done by Postgres using the cosine distance operator.
type PgVectorStore struct {
	pool       DBPool
	table      string
	collection string
	embedder   embeddings.Embedder
}

var _ Store = (*PgVectorStore)(nil)

// NewPgVectorStore creates a store bound to a fresh collection id.
func NewPgVectorStore(pool DBPool, table string, embedder embeddings.Embedder) *PgVectorStore {
	if table == "" {
		table = DefaultPgVectorTable
	}
	return &PgVectorStore{
		pool:       pool,
		table:      table,
		collection: uuid.NewString(),
		embedder:   embedder,
	}
}

// Collection returns the collection id rows are tagged with.
func (s *PgVectorStore) Collection() string {
	return s.collection
}

// AddDocuments embeds docs and inserts one row per chunk.
func (s *PgVectorStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	vectors, err := embedDocuments(ctx, s.embedder, docs, options)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, collection, content, metadata, embedding) VALUES ($1, $2, $3, $4, $5)`, s.table)

	ids := make([]string, len(docs))
	for i, doc := range docs {
		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		ids[i] = uuid.NewString()
		if _, err := s.pool.Exec(ctx, query, ids[i], s.collection, doc.PageContent, metadata, pgvector.NewVector(vectors[i])); err != nil {
			return nil, fmt.Errorf("failed to insert chunk: %w", err)
		}
	}
	return ids, nil
}

// SimilaritySearch returns the closest chunks of this collection.
func (s *PgVectorStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := parseOptions(options)
	queryVec, err := embedQuery(ctx, s.embedder, query, opts)
	if err != nil {
		return nil, err
	}
	if numDocuments <= 0 {
		return []schema.Document{}, nil
	}

	sql := fmt.Sprintf(`SELECT content, metadata, 1 - (embedding <=> $1) AS score FROM %s WHERE collection = $2 ORDER BY embedding <=> $1 LIMIT $3`, s.table)
	rows, err := s.pool.Query(ctx, sql, pgvector.NewVector(queryVec), s.collection, numDocuments)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var docs []schema.Document
	for rows.Next() {
		var (
			content  string
			metadata []byte
			score    float64
		)
		if err := rows.Scan(&content, &metadata, &score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		doc := schema.Document{PageContent: content, Score: float32(score)}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunks: %w", err)
	}

	return topK(docs, numDocuments, opts.ScoreThreshold), nil
}

// Close deletes the collection's rows. The shared pool stays open.
func (s *PgVectorStore) Close(ctx context.Context) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE collection = $1`, s.table)
	if _, err := s.pool.Exec(ctx, query, s.collection); err != nil {
		return fmt.Errorf("failed to drop pgvector collection: %w", err)
	}
	return nil
}
