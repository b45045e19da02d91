package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smallnest/pitchgraph/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*ReportStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rs := NewReportStore(Options{Addr: mr.Addr(), TTL: ttl})
	t.Cleanup(func() { rs.Close() })
	return rs, mr
}

func TestReportStore(t *testing.T) {
	rs, mr := newTestStore(t, 0)
	ctx := context.Background()

	older := store.NewReport(store.KindView, "first pitch")
	older.Analysis = "Success Probability: 40%"
	older.CreatedAt = time.Now().Add(-time.Minute)
	newer := store.NewReport(store.KindPanel, "second pitch")
	newer.Sections = map[string]string{"vc_analyst": "fundable"}

	require.NoError(t, rs.Save(ctx, older))
	require.NoError(t, rs.Save(ctx, newer))

	assert.True(t, mr.Exists("pitchgraph:report:"+older.ID))

	loaded, err := rs.Load(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.Prompt, loaded.Prompt)
	assert.Equal(t, older.Analysis, loaded.Analysis)

	list, err := rs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, "fundable", list[0].Sections["vc_analyst"])

	list, err = rs.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, newer.ID, list[0].ID)

	require.NoError(t, rs.Delete(ctx, older.ID))
	_, err = rs.Load(ctx, older.ID)
	assert.ErrorIs(t, err, store.ErrReportNotFound)
	assert.ErrorIs(t, rs.Delete(ctx, older.ID), store.ErrReportNotFound)
}

func TestReportStore_TTLPrunesIndex(t *testing.T) {
	rs, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	r := store.NewReport(store.KindView, "pitch")
	require.NoError(t, rs.Save(ctx, r))
	assert.Equal(t, time.Hour, mr.TTL("pitchgraph:report:"+r.ID))

	mr.FastForward(2 * time.Hour)

	list, err := rs.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	members, err := mr.ZMembers("pitchgraph:reports")
	if err == nil {
		assert.Empty(t, members)
	}
}

func TestReportStore_ListReadsPastExpired(t *testing.T) {
	rs, mr := newTestStore(t, 0)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	var live, expiring []*store.Report
	for i := range 5 {
		r := store.NewReport(store.KindView, "pitch")
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, rs.Save(ctx, r))
		if i < 2 {
			live = append(live, r)
		} else {
			expiring = append(expiring, r)
		}
	}
	for _, r := range expiring {
		mr.SetTTL("pitchgraph:report:"+r.ID, time.Minute)
	}
	mr.FastForward(2 * time.Minute)

	list, err := rs.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2, "the page is filled from older live reports")
	assert.Equal(t, live[1].ID, list[0].ID)
	assert.Equal(t, live[0].ID, list[1].ID)

	members, err := mr.ZMembers("pitchgraph:reports")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{live[0].ID, live[1].ID}, members)
}
