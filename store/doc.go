// Package store persists the reports produced by the analysis endpoints so
// they can be listed and fetched again.
//
// Backends live in subpackages:
//   - memory: process-local map (default)
//   - sqlite: file-based storage via mattn/go-sqlite3
//   - redis: JSON values plus a sorted-set index by creation time
//   - postgres: JSONB rows via pgx
//
// The backend package opens one of them from configuration.
package store
