package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smallnest/pitchgraph/log"
	"github.com/smallnest/pitchgraph/rag/store"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/tmc/langchaingo/vectorstores"
)

// DefaultQuery is the retrieval query used for startup assessments.
const DefaultQuery = "Predict startup success"

// DefaultK is the number of chunks retrieved per query.
const DefaultK = 4

// ErrEmptyPrompt is returned when there is no text to analyze.
var ErrEmptyPrompt = errors.New("prompt cannot be empty")

// Builder builds per-request retrievers.
type Builder struct {
	splitter textsplitter.TextSplitter
	stores   *store.Factory
	k        int
	logger   log.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithSplitter overrides the default recursive splitter.
func WithSplitter(s textsplitter.TextSplitter) BuilderOption {
	return func(b *Builder) {
		b.splitter = s
	}
}

// WithK sets how many chunks a retrieval returns.
func WithK(k int) BuilderOption {
	return func(b *Builder) {
		if k > 0 {
			b.k = k
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = l
	}
}

// NewBuilder creates a Builder whose collections come from stores.
func NewBuilder(stores *store.Factory, opts ...BuilderOption) *Builder {
	b := &Builder{
		splitter: NewSplitter(DefaultChunkSize, DefaultChunkOverlap),
		stores:   stores,
		k:        DefaultK,
		logger:   log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Retrieval is an indexed prompt ready to be queried. Close drops its collection.
type Retrieval struct {
	store     store.Store
	retriever vectorstores.Retriever
	chunks    int
}

// Build splits text, embeds the chunks into a fresh collection and returns a retriever over it.
func (b *Builder) Build(ctx context.Context, embedder embeddings.Embedder, text string) (*Retrieval, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyPrompt
	}

	docs, err := Split(b.splitter, text)
	if err != nil {
		return nil, err
	}

	s := b.stores.New(embedder)
	if _, err := s.AddDocuments(ctx, docs); err != nil {
		if cerr := s.Close(context.WithoutCancel(ctx)); cerr != nil {
			b.logger.Warn("failed to drop collection: %v", cerr)
		}
		return nil, fmt.Errorf("failed to index prompt: %w", err)
	}
	b.logger.Debug("indexed %d chunks into %s store", len(docs), b.stores.Kind())

	return &Retrieval{
		store:     s,
		retriever: vectorstores.ToRetriever(s, b.k),
		chunks:    len(docs),
	}, nil
}

// Chunks reports how many chunks were indexed.
func (r *Retrieval) Chunks() int {
	return r.chunks
}

// Documents returns the chunks relevant to query.
func (r *Retrieval) Documents(ctx context.Context, query string) ([]schema.Document, error) {
	docs, err := r.retriever.GetRelevantDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}
	return docs, nil
}

// Context returns the chunks relevant to query joined into one block.
func (r *Retrieval) Context(ctx context.Context, query string) (string, error) {
	docs, err := r.Documents(ctx, query)
	if err != nil {
		return "", err
	}
	return FormatDocuments(docs), nil
}

// Close drops the collection.
func (r *Retrieval) Close(ctx context.Context) error {
	return r.store.Close(ctx)
}

// FormatDocuments joins document contents with a blank line between them.
func FormatDocuments(docs []schema.Document) string {
	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = doc.PageContent
	}
	return strings.Join(parts, "\n\n")
}
