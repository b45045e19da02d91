package app

import (
	"context"
	"errors"

	"github.com/smallnest/pitchgraph/analysis"
	"github.com/smallnest/pitchgraph/config"
	"github.com/smallnest/pitchgraph/llms/provider"
	"github.com/smallnest/pitchgraph/log"
	"github.com/smallnest/pitchgraph/rag"
	vstore "github.com/smallnest/pitchgraph/rag/store"
	"github.com/smallnest/pitchgraph/store"
	"github.com/smallnest/pitchgraph/store/backend"
)

// runtime holds the components shared by serve and analyze.
type runtime struct {
	analyzer *analysis.Analyzer
	panel    *analysis.Panel
	reports  store.ReportStore
	vectors  *vstore.Factory
}

func newRuntime(ctx context.Context, opts *config.Options, models provider.Source) (*runtime, error) {
	logger := log.GetDefaultLogger()

	vectors, err := vstore.NewFactory(ctx, opts.VectorStore.StoreConfig())
	if err != nil {
		return nil, err
	}

	reports, err := backend.Open(ctx, opts.Reports.BackendConfig())
	if err != nil {
		vectors.Close()
		return nil, err
	}

	if models == nil {
		models = provider.NewLazy(opts.LLM.ProviderConfig())
	}

	builder := rag.NewBuilder(vectors,
		rag.WithSplitter(rag.NewSplitter(opts.RAG.ChunkSize, opts.RAG.ChunkOverlap)),
		rag.WithK(opts.RAG.TopK),
		rag.WithLogger(log.Named(logger, "rag")),
	)
	temperature := opts.LLM.Temperature
	aopts := analysis.Options{
		Temperature:    &temperature,
		Query:          opts.RAG.Query,
		CoverageTarget: opts.RAG.CoverageTarget,
		MaxAttempts:    opts.LLM.MaxAttempts,
		CallTimeout:    opts.LLM.CallTimeout,
		Logger:         log.Named(logger, "analysis"),
	}

	logger.Debug("runtime ready: provider=%s vectorstore=%s reports=%s", opts.LLM.Provider, vectors.Kind(), opts.Reports.Backend)
	return &runtime{
		analyzer: analysis.NewAnalyzer(builder, models, aopts),
		panel:    analysis.NewPanel(builder, models, aopts),
		reports:  reports,
		vectors:  vectors,
	}, nil
}

func (r *runtime) Close() error {
	return errors.Join(r.reports.Close(), r.vectors.Close())
}
