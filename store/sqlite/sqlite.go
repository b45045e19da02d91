package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/smallnest/pitchgraph/store"
)

// ReportStore implements store.ReportStore using SQLite
type ReportStore struct {
	db        *sql.DB
	tableName string
}

var _ store.ReportStore = (*ReportStore)(nil)

// Options configuration for SQLite connection
type Options struct {
	Path      string
	TableName string // Default "reports"
}

// NewReportStore opens the database and creates the table if needed.
func NewReportStore(opts Options) (*ReportStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "reports"
	}

	s := &ReportStore{
		db:        db,
		tableName: tableName,
	}

	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (s *ReportStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s (created_at);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *ReportStore) Close() error {
	return s.db.Close()
}

// Save stores a report
func (s *ReportStore) Save(ctx context.Context, report *store.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, kind, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			payload = excluded.payload,
			created_at = excluded.created_at
	`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query, report.ID, string(report.Kind), string(payload), report.CreatedAt); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Load retrieves a report by ID
func (s *ReportStore) Load(ctx context.Context, id string) (*store.Report, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE id = ?`, s.tableName)

	var payload string
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return decode([]byte(payload))
}

// List returns up to limit reports, newest first
func (s *ReportStore) List(ctx context.Context, limit int) ([]*store.Report, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s ORDER BY created_at DESC LIMIT ?`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, store.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []*store.Report{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		r, err := decode([]byte(payload))
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Delete removes a report
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.tableName)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
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
