// Package store provides the ephemeral vector stores chunks are indexed into
// for the lifetime of a single analysis.
//
// Every store implements langchaingo's vectorstores.VectorStore, so it can be
// wrapped with vectorstores.ToRetriever. Three kinds exist:
//
//   - memory: in-process cosine similarity (default)
//   - redis: one hash per collection with a TTL, scored client-side
//   - pgvector: rows tagged with a collection id, ranked by Postgres
//
// A Factory owns the shared connections and hands out one collection per call
// to New; the caller must Close the collection when done.
package store
