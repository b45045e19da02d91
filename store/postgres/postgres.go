package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smallnest/pitchgraph/store"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// ReportStore implements store.ReportStore using PostgreSQL
type ReportStore struct {
	pool      DBPool
	tableName string
}

var _ store.ReportStore = (*ReportStore)(nil)

// Options configuration for Postgres connection
type Options struct {
	ConnString string
	TableName  string // Default "reports"
}

// NewReportStore creates a new Postgres report store and ensures its schema.
func NewReportStore(ctx context.Context, opts Options) (*ReportStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	s := NewReportStoreWithPool(pool, opts.TableName)
	if err := s.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewReportStoreWithPool creates a new Postgres report store with an existing pool
func NewReportStoreWithPool(pool DBPool, tableName string) *ReportStore {
	if tableName == "" {
		tableName = "reports"
	}
	return &ReportStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *ReportStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s (created_at DESC);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *ReportStore) Close() error {
	s.pool.Close()
	return nil
}

// Save stores a report
func (s *ReportStore) Save(ctx context.Context, report *store.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, kind, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			payload = EXCLUDED.payload,
			created_at = EXCLUDED.created_at
	`, s.tableName)

	if _, err := s.pool.Exec(ctx, query, report.ID, string(report.Kind), payload, report.CreatedAt); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Load retrieves a report by ID
func (s *ReportStore) Load(ctx context.Context, id string) (*store.Report, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE id = $1`, s.tableName)

	var payload []byte
	if err := s.pool.QueryRow(ctx, query, id).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return decode(payload)
}

// List returns up to limit reports, newest first
func (s *ReportStore) List(ctx context.Context, limit int) ([]*store.Report, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s ORDER BY created_at DESC LIMIT $1`, s.tableName)

	rows, err := s.pool.Query(ctx, query, store.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []*store.Report{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		r, err := decode(payload)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Delete removes a report
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.tableName)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrReportNotFound
	}
	return nil
}

func decode(payload []byte) (*store.Report, error) {
	var r store.Report
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &r, nil
}
