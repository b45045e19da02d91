package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/smallnest/pitchgraph/log"
	"github.com/smallnest/pitchgraph/rag/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
)

func newTestBuilder(t *testing.T, opts ...BuilderOption) *Builder {
	t.Helper()
	factory, err := store.NewFactoryWithClients(store.Config{Kind: store.KindMemory}, nil, nil)
	require.NoError(t, err)
	opts = append([]BuilderOption{WithLogger(&log.NoOpLogger{})}, opts...)
	return NewBuilder(factory, opts...)
}

func TestSplit(t *testing.T) {
	docs, err := Split(NewSplitter(0, 0), "short pitch")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "short pitch", docs[0].PageContent)
	assert.Equal(t, 0, docs[0].Metadata["chunk"])

	long := strings.Repeat("word ", 600)
	docs, err = Split(NewSplitter(1000, 200), long)
	require.NoError(t, err)
	assert.Greater(t, len(docs), 2)
	for i, d := range docs {
		assert.LessOrEqual(t, len(d.PageContent), 1000)
		assert.Equal(t, i, d.Metadata["chunk"])
	}
}

func TestBuilder_BuildAndContext(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(t, WithSplitter(NewSplitter(80, 0)))

	text := strings.Join([]string{
		"Our market is logistics software for small carriers.",
		"The founders previously built a freight marketplace.",
		"Revenue grew from zero to forty thousand dollars a month.",
		"We charge a monthly subscription per truck on the platform.",
		"Competitors focus on enterprise fleets rather than owners.",
		"We plan to raise a seed round to expand sales.",
	}, "\n\n")

	r, err := b.Build(ctx, store.NewMockEmbedder(16), text)
	require.NoError(t, err)
	defer r.Close(ctx)

	assert.Equal(t, 6, r.Chunks())

	docs, err := r.Documents(ctx, DefaultQuery)
	require.NoError(t, err)
	assert.Len(t, docs, DefaultK)

	contextText, err := r.Context(ctx, DefaultQuery)
	require.NoError(t, err)
	assert.Equal(t, DefaultK, len(strings.Split(contextText, "\n\n")))
}

func TestBuilder_WithK(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(t, WithK(1), WithSplitter(NewSplitter(20, 0)))

	r, err := b.Build(ctx, store.NewMockEmbedder(8), "first chunk here\n\nsecond chunk here")
	require.NoError(t, err)
	defer r.Close(ctx)

	docs, err := r.Documents(ctx, "first chunk here")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "first chunk here", docs[0].PageContent)
}

func TestBuilder_EmptyPrompt(t *testing.T) {
	b := newTestBuilder(t)
	_, err := b.Build(context.Background(), store.NewMockEmbedder(8), "  \n ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestFormatDocuments(t *testing.T) {
	docs := []schema.Document{{PageContent: "a"}, {PageContent: "b"}}
	assert.Equal(t, "a\n\nb", FormatDocuments(docs))
	assert.Equal(t, "", FormatDocuments(nil))
}
