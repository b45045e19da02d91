package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/smallnest/pitchgraph/rag"
	"github.com/smallnest/pitchgraph/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportStore(t *testing.T) {
	rs, err := NewReportStore(Options{Path: filepath.Join(t.TempDir(), "reports.db")})
	require.NoError(t, err)
	defer rs.Close()

	ctx := context.Background()
	p := 72

	first := store.NewReport(store.KindView, "first pitch")
	first.Analysis = "Success Probability: 72%"
	first.Probability = &p
	first.Coverage = rag.MeasureCoverage("first pitch", 0)
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)

	second := store.NewReport(store.KindPanel, "second pitch")
	second.Sections = map[string]string{"product_analyst": "clear wedge"}

	require.NoError(t, rs.Save(ctx, first))
	require.NoError(t, rs.Save(ctx, second))

	loaded, err := rs.Load(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Analysis, loaded.Analysis)
	require.NotNil(t, loaded.Probability)
	assert.Equal(t, 72, *loaded.Probability)
	assert.Equal(t, first.Coverage, loaded.Coverage)

	list, err := rs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	// Saving again replaces the row.
	first.Analysis = "revised"
	require.NoError(t, rs.Save(ctx, first))
	loaded, err = rs.Load(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "revised", loaded.Analysis)

	require.NoError(t, rs.Delete(ctx, first.ID))
	_, err = rs.Load(ctx, first.ID)
	assert.ErrorIs(t, err, store.ErrReportNotFound)
	assert.ErrorIs(t, rs.Delete(ctx, first.ID), store.ErrReportNotFound)
}
