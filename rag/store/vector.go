package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// ErrNoEmbedder is returned when neither the store nor the call options carry an embedder.
var ErrNoEmbedder = errors.New("no embedder configured")

// MemoryStore is an ephemeral in-process vector store scored by cosine similarity.
// It lives for one request and is discarded by Close.
type MemoryStore struct {
	mu         sync.RWMutex
	embedder   embeddings.Embedder
	ids        []string
	documents  []schema.Document
	embeddings [][]float32
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(embedder embeddings.Embedder) *MemoryStore {
	return &MemoryStore{embedder: embedder}
}

// AddDocuments embeds docs and appends them to the store.
func (s *MemoryStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	vectors, err := embedDocuments(ctx, s.embedder, docs, options)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = uuid.NewString()
		s.ids = append(s.ids, ids[i])
		s.documents = append(s.documents, doc)
		s.embeddings = append(s.embeddings, vectors[i])
	}
	return ids, nil
}

// SimilaritySearch returns the numDocuments documents closest to query.
func (s *MemoryStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := parseOptions(options)
	queryVec, err := embedQuery(ctx, s.embedder, query, opts)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]schema.Document, len(s.documents))
	for i, doc := range s.documents {
		doc.Score = float32(cosineSimilarity32(queryVec, s.embeddings[i]))
		candidates[i] = doc
	}
	return topK(candidates, numDocuments, opts.ScoreThreshold), nil
}

// Len reports the number of stored chunks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Close drops every stored chunk.
func (s *MemoryStore) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	s.documents = nil
	s.embeddings = nil
	return nil
}

func parseOptions(options []vectorstores.Option) vectorstores.Options {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}
	return opts
}

func pickEmbedder(def embeddings.Embedder, opts vectorstores.Options) (embeddings.Embedder, error) {
	if opts.Embedder != nil {
		return opts.Embedder, nil
	}
	if def == nil {
		return nil, ErrNoEmbedder
	}
	return def, nil
}

func embedDocuments(ctx context.Context, def embeddings.Embedder, docs []schema.Document, options []vectorstores.Option) ([][]float32, error) {
	embedder, err := pickEmbedder(def, parseOptions(options))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
	}
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}
	return vectors, nil
}

func embedQuery(ctx context.Context, def embeddings.Embedder, query string, opts vectorstores.Options) ([]float32, error) {
	embedder, err := pickEmbedder(def, opts)
	if err != nil {
		return nil, err
	}
	vec, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return vec, nil
}

// topK sorts scored documents best first, drops those under threshold and keeps at most k.
func topK(docs []schema.Document, k int, threshold float32) []schema.Document {
	if k <= 0 {
		return []schema.Document{}
	}

	slices.SortStableFunc(docs, func(a, b schema.Document) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	out := make([]schema.Document, 0, min(k, len(docs)))
	for _, doc := range docs {
		if len(out) == k {
			break
		}
		if threshold > 0 && doc.Score < threshold {
			break
		}
		out = append(out, doc)
	}
	return out
}

// cosineSimilarity32 calculates cosine similarity between two float32 vectors
func cosineSimilarity32(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct float64
	var normA float64
	var normB float64

	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
