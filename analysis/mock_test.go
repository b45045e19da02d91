package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/smallnest/pitchgraph/llms/provider"
	"github.com/smallnest/pitchgraph/log"
	"github.com/smallnest/pitchgraph/rag"
	"github.com/smallnest/pitchgraph/rag/store"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// mockLLM answers with the first line of the system prompt so callers can tell roles apart.
type mockLLM struct {
	mu       sync.Mutex
	calls    [][]llms.MessageContent
	opts     []llms.CallOptions
	answer   string
	failRole string
	// failTimes limits failRole failures; zero fails every call.
	failTimes int
	failed    int
}

func (m *mockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}

	system := textOf(messages[0])
	firstLine, _, _ := strings.Cut(system, "\n")

	m.mu.Lock()
	m.calls = append(m.calls, messages)
	m.opts = append(m.opts, opts)
	fail := m.failRole != "" && strings.Contains(firstLine, m.failRole) &&
		(m.failTimes == 0 || m.failed < m.failTimes)
	if fail {
		m.failed++
	}
	m.mu.Unlock()

	if fail {
		return nil, errors.New("upstream 500")
	}

	answer := m.answer
	if answer == "" {
		answer = firstLine
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: answer}}}, nil
}

func (m *mockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func textOf(mc llms.MessageContent) string {
	var sb strings.Builder
	for _, p := range mc.Parts {
		if t, ok := p.(llms.TextContent); ok {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}

func newTestBuilder(t *testing.T) *rag.Builder {
	t.Helper()
	factory, err := store.NewFactoryWithClients(store.Config{Kind: store.KindMemory}, nil, nil)
	require.NoError(t, err)
	return rag.NewBuilder(factory, rag.WithLogger(&log.NoOpLogger{}), rag.WithSplitter(rag.NewSplitter(120, 20)))
}

func testModels(llm llms.Model) provider.Source {
	return provider.Static(&provider.Models{LLM: llm, Embedder: store.NewMockEmbedder(16)})
}

func testOptions() Options {
	return Options{Logger: &log.NoOpLogger{}}
}

const samplePitch = `<h2>Problem Statement</h2>
<h3>The Problem</h3>
<p>Independent truck owners lose a day a week to paperwork and chasing invoices.</p>
<h3>Who Experiences This?</h3>
<p>Owner-operators with one to five trucks in North America.</p>
<h2>Founder Profile</h2>
<h3>Background</h3>
<p>Two founders who previously built and sold a freight marketplace.</p>
<h2>Funding &amp; Runway</h2>
<p>Raised 500k pre-seed, 14 months of runway, 40k MRR growing 15% monthly.</p>`
