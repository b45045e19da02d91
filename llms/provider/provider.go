// Package provider builds the hosted chat model and embedder pitchgraph talks to.
package provider

import (
	"errors"
	"fmt"
	"sync"

	"github.com/smallnest/pitchgraph/llms/goopenai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider names.
const (
	OpenAI   = "openai"
	GoOpenAI = "goopenai"
)

var (
	// ErrMissingAPIKey is returned when no OpenAI key is configured.
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY not found. Please set it in the .env file.")

	// ErrUnknownProvider is returned for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// Config selects a provider and its models.
type Config struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
}

// Models is a chat model paired with the embedder for the same account.
type Models struct {
	LLM      llms.Model
	Embedder embeddings.Embedder
}

// New builds the chat model and embedder for cfg.
func New(cfg Config) (*Models, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = goopenai.DefaultModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = goopenai.DefaultEmbeddingModel
	}

	var (
		model  llms.Model
		client embeddings.EmbedderClient
	)
	switch cfg.Provider {
	case "", OpenAI:
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
			openai.WithEmbeddingModel(cfg.EmbeddingModel),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		model, client = llm, llm
	case GoOpenAI:
		opts := []goopenai.Option{
			goopenai.WithAPIKey(cfg.APIKey),
			goopenai.WithModel(cfg.Model),
			goopenai.WithEmbeddingModel(cfg.EmbeddingModel),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, goopenai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := goopenai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create go-openai client: %w", err)
		}
		model, client = llm, llm
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &Models{LLM: model, Embedder: embedder}, nil
}

// Source yields the models for a request.
type Source interface {
	Models() (*Models, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (*Models, error)

// Models implements Source.
func (f SourceFunc) Models() (*Models, error) {
	return f()
}

// Static returns a Source that always yields m.
func Static(m *Models) Source {
	return SourceFunc(func() (*Models, error) { return m, nil })
}

// Lazy builds the models on first successful use and reuses them afterwards.
// A missing key is reported on every call, not at construction, so a server
// can start without credentials and answer each request with the error.
type Lazy struct {
	cfg    Config
	mu     sync.Mutex
	models *Models
}

// NewLazy returns a Lazy source for cfg.
func NewLazy(cfg Config) *Lazy {
	return &Lazy{cfg: cfg}
}

// Models implements Source.
func (l *Lazy) Models() (*Models, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.models != nil {
		return l.models, nil
	}
	m, err := New(l.cfg)
	if err != nil {
		return nil, err
	}
	l.models = m
	return m, nil
}
