// Pitchgraph - LLM assessments of startup pitches
//
// Pitchgraph takes a free-text startup description, indexes it into an
// ephemeral vector store and asks a hosted language model how likely the
// startup is to succeed. A second mode sends the same retrieved context to a
// panel of five analysts (financial, VC, CTO, marketing, product) running as
// parallel nodes of a small state graph.
//
// # Quick Start
//
// Build the binary and start the HTTP service:
//
//	go install github.com/smallnest/pitchgraph/cmd/pitchgraph@latest
//	export OPENAI_API_KEY=sk-...
//	pitchgraph serve --server.addr :8000
//
// Ask for an assessment:
//
//	curl -s localhost:8000/view -d '{"prompt": "We help truck owners get paid faster."}'
//
// Or run it locally without a server:
//
//	pitchgraph analyze --file pitch.md
//	pitchgraph analyze --panel "We help truck owners get paid faster."
//
// # Packages
//
//   - rag: prompt normalization, chunking, retrieval and coverage stats
//   - rag/store: ephemeral vector stores (memory, redis, pgvector)
//   - llms/provider, llms/goopenai: chat and embedding models
//   - analysis: the success assessment and the analyst panel
//   - graph: a generic state graph with parallel fan-out, retries and
//     mermaid/dot/ascii export
//   - store: saved reports (memory, sqlite, redis, postgres)
//   - templates: the pitch section templates served to the editor
//   - render: markdown to sanitized HTML
//   - server: the gin HTTP API
//   - config: options, flags, env and config file loading
//   - log: leveled logging on top of golog
//
// # HTTP API
//
//	POST   /view            success assessment
//	POST   /panel           analyst panel
//	GET    /panel/graph     panel graph as mermaid, dot or ascii
//	GET    /reports         recent reports
//	GET    /reports/:id     one report
//	DELETE /reports/:id     delete a report
//	GET    /templates       section templates
//	GET    /templates/:id   one template
//	GET    /health          liveness
//
// Errors are returned as {"detail": "..."}.
//
// # Configuration
//
// Settings come from flags, PITCHGRAPH_* environment variables, an optional
// config file (--config) and .env files, in that order of precedence.
// OPENAI_API_KEY and OPENAI_BASE_URL are honored for the model provider.
package pitchgraph // import "github.com/smallnest/pitchgraph"
