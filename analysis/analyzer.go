package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/smallnest/pitchgraph/llms/provider"
	"github.com/smallnest/pitchgraph/log"
	"github.com/smallnest/pitchgraph/rag"
)

// DefaultTemperature is the sampling temperature used when Options leaves
// Temperature unset.
const DefaultTemperature = 0.3

// Options tunes an Analyzer or a Panel.
type Options struct {
	// Temperature nil means DefaultTemperature.
	Temperature    *float64
	Query          string
	CoverageTarget int
	// MaxAttempts and CallTimeout wrap each panel analyst node.
	MaxAttempts int
	CallTimeout time.Duration
	Logger      log.Logger
}

func (o Options) withDefaults() Options {
	if o.Temperature == nil {
		t := DefaultTemperature
		o.Temperature = &t
	}
	if o.Query == "" {
		o.Query = rag.DefaultQuery
	}
	if o.CoverageTarget <= 0 {
		o.CoverageTarget = rag.DefaultCoverageTarget
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}
	if o.Logger == nil {
		o.Logger = log.GetDefaultLogger()
	}
	return o
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

// Assessment is the result of a single success prediction.
type Assessment struct {
	Text        string
	Probability *int
	Coverage    rag.Coverage
	Chunks      int
	Elapsed     time.Duration
}

// Analyzer predicts startup success from a free-text description.
type Analyzer struct {
	builder *rag.Builder
	models  provider.Source
	opts    Options
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(builder *rag.Builder, models provider.Source, opts Options) *Analyzer {
	return &Analyzer{builder: builder, models: models, opts: opts.withDefaults()}
}

// Analyze indexes prompt, retrieves its context and runs the success prompt.
func (a *Analyzer) Analyze(ctx context.Context, prompt string) (*Assessment, error) {
	start := time.Now()

	text := rag.NormalizePrompt(prompt)
	if text == "" {
		return nil, rag.ErrEmptyPrompt
	}

	models, err := a.models.Models()
	if err != nil {
		return nil, err
	}

	contextText, chunks, err := retrieveContext(ctx, a.builder, models, text, a.opts)
	if err != nil {
		return nil, err
	}

	out, err := generate(ctx, models.LLM, successPrompt, contextText, *a.opts.Temperature)
	if err != nil {
		return nil, err
	}

	res := &Assessment{
		Text:     out,
		Coverage: rag.MeasurePromptCoverage(prompt, a.opts.CoverageTarget),
		Chunks:   chunks,
		Elapsed:  time.Since(start),
	}
	if p, ok := ParseProbability(out); ok {
		res.Probability = &p
	}
	a.opts.Logger.Info("assessment done: chunks=%d probability=%v elapsed=%s", chunks, probabilityString(res.Probability), res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// retrieveContext indexes text into a fresh collection, queries it once and drops it.
func retrieveContext(ctx context.Context, builder *rag.Builder, models *provider.Models, text string, opts Options) (string, int, error) {
	r, err := builder.Build(ctx, models.Embedder, text)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		if err := r.Close(context.WithoutCancel(ctx)); err != nil {
			opts.Logger.Warn("failed to drop collection: %v", err)
		}
	}()

	contextText, err := r.Context(ctx, opts.Query)
	if err != nil {
		return "", 0, err
	}
	return contextText, r.Chunks(), nil
}

func probabilityString(p *int) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d%%", *p)
}
