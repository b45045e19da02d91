// Package postgres stores reports in PostgreSQL through a pgx pool.
//
// Reports are kept as JSONB payloads keyed by id, with a created_at column
// for newest-first listing. NewReportStoreWithPool accepts any DBPool, which
// lets tests substitute pgxmock.
package postgres
