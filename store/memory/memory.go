package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/smallnest/pitchgraph/store"
)

// ReportStore keeps reports in a map. Contents are lost on restart.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]store.Report
}

var _ store.ReportStore = (*ReportStore)(nil)

// NewReportStore creates an empty store.
func NewReportStore() *ReportStore {
	return &ReportStore{reports: make(map[string]store.Report)}
}

// Save stores a copy of report.
func (s *ReportStore) Save(_ context.Context, report *store.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = clone(report)
	return nil
}

// Load returns a copy of the report.
func (s *ReportStore) Load(_ context.Context, id string) (*store.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, store.ErrReportNotFound
	}
	c := clone(&r)
	return &c, nil
}

// List returns up to limit reports, newest first.
func (s *ReportStore) List(_ context.Context, limit int) ([]*store.Report, error) {
	s.mu.RLock()
	out := make([]*store.Report, 0, len(s.reports))
	for _, r := range s.reports {
		c := clone(&r)
		out = append(out, &c)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *store.Report) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if limit = store.NormalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a report.
func (s *ReportStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return store.ErrReportNotFound
	}
	delete(s.reports, id)
	return nil
}

// clone copies r so neither side shares its sections or probability.
func clone(r *store.Report) store.Report {
	c := *r
	c.Sections = maps.Clone(r.Sections)
	if r.Probability != nil {
		p := *r.Probability
		c.Probability = &p
	}
	return c
}

// Close is a no-op.
func (s *ReportStore) Close() error {
	return nil
}
