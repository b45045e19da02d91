package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallnest/pitchgraph/graph"
	"github.com/smallnest/pitchgraph/llms/provider"
	"github.com/smallnest/pitchgraph/rag"
)

// Panel node names besides the analyst roles.
const (
	NodeRetrieve = "retrieve"
	NodeCollect  = "collect"
)

// State keys written by the panel graph.
const (
	keyText        = "text"
	keyContext     = "context"
	keyChunks      = "chunks"
	keyCompletedAt = "completed_at"
)

// PanelReport holds one text block per analyst role.
type PanelReport struct {
	Sections    map[string]string
	Coverage    rag.Coverage
	Chunks      int
	CompletedAt time.Time
	Elapsed     time.Duration
}

// Panel fans the retrieved context out to the analyst roles.
//
// The graph is
//
//	retrieve -> {financial, vc, cto, marketing, product} -> collect -> END
//
// Analysts run concurrently against the same context. Each owns its state
// key, registered with graph.WriteOnceReducer so a collision fails the run.
type Panel struct {
	builder *rag.Builder
	models  provider.Source
	opts    Options
}

// NewPanel creates a Panel.
func NewPanel(builder *rag.Builder, models provider.Source, opts Options) *Panel {
	return &Panel{builder: builder, models: models, opts: opts.withDefaults()}
}

// Run executes the panel graph for prompt.
func (p *Panel) Run(ctx context.Context, prompt string) (*PanelReport, error) {
	start := time.Now()

	text := rag.NormalizePrompt(prompt)
	if text == "" {
		return nil, rag.ErrEmptyPrompt
	}

	models, err := p.models.Models()
	if err != nil {
		return nil, err
	}

	runnable, err := p.compile(models)
	if err != nil {
		return nil, err
	}

	state, err := runnable.Invoke(ctx, map[string]any{keyText: text})
	if err != nil {
		return nil, err
	}

	report := &PanelReport{
		Sections: make(map[string]string, len(Roles)),
		Coverage: rag.MeasurePromptCoverage(prompt, p.opts.CoverageTarget),
		Elapsed:  time.Since(start),
	}
	for _, role := range Roles {
		s, _ := state[role.Key].(string)
		report.Sections[role.Key] = s
	}
	report.Chunks, _ = state[keyChunks].(int)
	report.CompletedAt, _ = state[keyCompletedAt].(time.Time)

	p.opts.Logger.Info("panel done: roles=%d chunks=%d elapsed=%s", len(Roles), report.Chunks, report.Elapsed.Round(time.Millisecond))
	return report, nil
}

// Graph returns the uncompiled panel graph for models. It is exported for
// inspection; Run compiles its own copy.
func (p *Panel) Graph(models *provider.Models) *graph.StateGraph[map[string]any] {
	schema := graph.NewMapSchema()
	for _, role := range Roles {
		schema.RegisterReducer(role.Key, graph.WriteOnceReducer)
	}

	g := graph.NewStateGraph[map[string]any]()
	g.SetSchema(schema)
	g.AddListener(graph.NewLoggingListener(p.opts.Logger, "panel"))

	g.AddNode(NodeRetrieve, "Index the prompt and retrieve shared context", func(ctx context.Context, state map[string]any) (map[string]any, error) {
		text, _ := state[keyText].(string)
		contextText, chunks, err := retrieveContext(ctx, p.builder, models, text, p.opts)
		if err != nil {
			return nil, err
		}
		return map[string]any{keyContext: contextText, keyChunks: chunks}, nil
	})
	g.SetEntryPoint(NodeRetrieve)

	for _, role := range Roles {
		var analyst graph.NodeFunc[map[string]any] = func(ctx context.Context, state map[string]any) (map[string]any, error) {
			contextText, _ := state[keyContext].(string)
			out, err := generate(ctx, models.LLM, role.Prompt, contextText, *p.opts.Temperature)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", role.Title, err)
			}
			return map[string]any{role.Key: out}, nil
		}
		analyst = graph.WithTimeout(role.Key, analyst, p.opts.CallTimeout)
		analyst = graph.WithRetry(role.Key, analyst, p.retryConfig())
		g.AddNode(role.Key, role.Title, analyst)
		g.AddEdge(NodeRetrieve, role.Key)
		g.AddEdge(role.Key, NodeCollect)
	}

	g.AddNode(NodeCollect, "Mark the panel complete", func(ctx context.Context, state map[string]any) (map[string]any, error) {
		return map[string]any{keyCompletedAt: time.Now().UTC()}, nil
	})
	g.AddEdge(NodeCollect, graph.END)

	return g
}

// Diagram renders the panel graph as mermaid, dot or ascii.
func (p *Panel) Diagram(format string) (string, error) {
	return graph.NewExporter(p.Graph(nil)).Draw(format)
}

func (p *Panel) retryConfig() graph.RetryConfig {
	cfg := graph.DefaultRetryConfig()
	cfg.MaxAttempts = p.opts.MaxAttempts
	cfg.Retryable = func(err error) bool {
		return !errors.Is(err, provider.ErrMissingAPIKey)
	}
	return cfg
}

func (p *Panel) compile(models *provider.Models) (*graph.Runnable[map[string]any], error) {
	return p.Graph(models).Compile()
}
