package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smallnest/pitchgraph/config"
	"github.com/smallnest/pitchgraph/llms/provider"
	"github.com/smallnest/pitchgraph/rag"
	vstore "github.com/smallnest/pitchgraph/rag/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type stubLLM struct{}

func (stubLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	var system string
	for _, p := range messages[0].Parts {
		if t, ok := p.(llms.TextContent); ok {
			system = t.Text
		}
	}
	first, _, _ := strings.Cut(strings.TrimSpace(system), "\n")
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		Content: "Success Probability: 65 %\nReasoning:\n- " + first,
	}}}, nil
}

func (m stubLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	rf := &rootFlags{
		opts:   config.NewOptions(),
		models: provider.Static(&provider.Models{LLM: stubLLM{}, Embedder: vstore.NewMockEmbedder(16)}),
	}
	cmd := newRootCommand(rf)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))

	base := []string{"--log.level=none", "--env-file=" + filepath.Join(t.TempDir(), "none.env")}
	cmd.SetArgs(append(args[:1:1], append(base, args[1:]...)...))
	err := cmd.Execute()
	return out.String(), err
}

func TestTemplatesCommand(t *testing.T) {
	out, err := run(t, "", "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "problem-statement")
	assert.Contains(t, out, "Custom Section")

	out, err = run(t, "", "templates", "market-notes")
	require.NoError(t, err)
	assert.Contains(t, out, "Competitive Landscape")
	assert.Contains(t, out, "Who are the new entrants?")

	_, err = run(t, "", "templates", "nope")
	assert.Error(t, err)
}

func TestAnalyzeLocal(t *testing.T) {
	out, err := run(t, "", "analyze", "A marketplace for used lab equipment run by two former biotech buyers.")
	require.NoError(t, err)
	assert.Contains(t, out, "Startup assessment")
	assert.Contains(t, out, "Success probability: 65%")
	assert.Contains(t, out, "startup evaluation expert")
	assert.Contains(t, out, "report ")
}

func TestAnalyzeLocal_PanelFromStdin(t *testing.T) {
	out, err := run(t, "<h2>Team</h2><p>Three founders from Stripe.</p>", "analyze", "--panel")
	require.NoError(t, err)
	for _, title := range []string{"Financial Analyst", "VC Analyst", "CTO Analyst", "Marketing Analyst", "Product Analyst"} {
		assert.Contains(t, out, title)
	}
	assert.Contains(t, out, "technical due diligence")
}

func TestAnalyzeLocal_EmptyPrompt(t *testing.T) {
	_, err := run(t, "   ", "analyze")
	assert.ErrorIs(t, err, rag.ErrEmptyPrompt)
}

func TestAnalyzeRemote(t *testing.T) {
	var got map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/view":
			_, _ = w.Write([]byte(`{"analysis":"Success Probability: 80 %","id":"r-1","success_probability":80,"coverage":{"char_count":12,"word_count":2,"percentage":1}}`))
		case "/panel":
			_, _ = w.Write([]byte(`{"id":"r-2","vc_analyst":"Strong fit for seed funds","coverage":{"char_count":12}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	out, err := run(t, "", "analyze", "--server", ts.URL+"/", "remote pitch")
	require.NoError(t, err)
	assert.Equal(t, "remote pitch", got["prompt"])
	assert.Contains(t, out, "Success probability: 80%")
	assert.Contains(t, out, "report r-1")

	out, err = run(t, "", "analyze", "--server", ts.URL, "--panel", "remote pitch")
	require.NoError(t, err)
	assert.Contains(t, out, "Strong fit for seed funds")
	assert.Contains(t, out, "report r-2")
}

func TestAnalyzeRemote_BackendError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"OPENAI_API_KEY not found. Please set it in the .env file."}`))
	}))
	defer ts.Close()

	_, err := run(t, "", "analyze", "--server", ts.URL, "pitch")
	require.ErrorIs(t, err, ErrBackend)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	ts.Close()
	_, err = run(t, "", "analyze", "--server", ts.URL, "pitch")
	assert.ErrorIs(t, err, ErrBackend)
}

func TestAnalyzeRemote_MalformedPanel(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "coverage", body: `{"id":"r-3","vc_analyst":"ok","coverage":"full"}`, want: "malformed coverage"},
		{name: "id", body: `{"id":42,"vc_analyst":"ok"}`, want: "malformed id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := run(t, "", "analyze", "--server", ts.URL, "--panel", "pitch")
			require.ErrorIs(t, err, ErrBackend)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "", "templates", "--rag.top-k=0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top-k")
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, "", "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "retrieve --> financial_analyst")

	out, err = run(t, "", "graph", "--format", "dot")
	require.NoError(t, err)
	assert.Contains(t, out, "collect -> END;")

	_, err = run(t, "", "graph", "--format", "svg")
	assert.Error(t, err)
}
