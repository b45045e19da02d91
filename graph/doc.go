// Package graph runs small directed graphs of concurrent nodes over a shared state.
//
// A StateGraph is built from named nodes and static edges. Execution proceeds
// in supersteps: every node in the current frontier runs in its own goroutine,
// their partial updates are merged through the graph's Schema (MapSchema
// applies per-key reducers and otherwise overwrites), and the next frontier is
// the deduplicated set of edge targets. A branch stops when it reaches END.
//
// Panics in nodes are recovered and returned as errors. A NodeListener can
// observe node start, completion and failure; LoggingListener writes those
// events through the log package.
//
// WithRetry and WithTimeout wrap a NodeFunc with exponential-backoff retries
// and a per-call deadline. Exporter draws a graph as mermaid, dot or ascii.
package graph
