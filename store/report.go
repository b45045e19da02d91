package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smallnest/pitchgraph/rag"
)

// Kind tells which endpoint produced a report.
type Kind string

const (
	// KindView is a single success assessment.
	KindView Kind = "view"
	// KindPanel is a five-analyst panel run.
	KindPanel Kind = "panel"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 20

// ErrReportNotFound is returned when a report id is unknown.
var ErrReportNotFound = errors.New("report not found")

// Report is a saved analysis.
type Report struct {
	ID          string            `json:"id"`
	Kind        Kind              `json:"kind"`
	Prompt      string            `json:"prompt"`
	Analysis    string            `json:"analysis,omitempty"`
	Sections    map[string]string `json:"sections,omitempty"`
	Probability *int              `json:"success_probability,omitempty"`
	Coverage    rag.Coverage      `json:"coverage"`
	Chunks      int               `json:"chunks"`
	ElapsedMS   int64             `json:"elapsed_ms"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewReport returns a report with a fresh id and creation time.
func NewReport(kind Kind, prompt string) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Kind:      kind,
		Prompt:    prompt,
		CreatedAt: time.Now().UTC(),
	}
}

// ReportStore persists reports.
type ReportStore interface {
	// Save stores or replaces a report
	Save(ctx context.Context, report *Report) error

	// Load retrieves a report by ID
	Load(ctx context.Context, id string) (*Report, error)

	// List returns up to limit reports, newest first
	List(ctx context.Context, limit int) ([]*Report, error)

	// Delete removes a report
	Delete(ctx context.Context, id string) error

	// Close releases the backend
	Close() error
}

// NormalizeLimit maps a non-positive limit to DefaultListLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
