package anchordb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/queuetrace/schema"
)

func newSQLiteStore(t *testing.T) *AnchorStoreImpl {
	t.Helper()
	store, err := NewAnchorStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "anchors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*AnchorStoreImpl)
}

func TestAnchorStore_NoneBackend(t *testing.T) {
	store, err := NewAnchorStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	// All operations are no-ops
	id, err := store.AddAnchor(schema.Anchor{Backlog: 5})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), id)

	_, err = store.LatestAnchor(time.Now())
	assert.ErrorIs(t, err, ErrNoAnchor)

	anchors, err := store.ListAnchors(10)
	assert.NoError(t, err)
	assert.Nil(t, anchors)

	assert.NoError(t, store.Close())
}

func TestAnchorStore_UnsupportedBackend(t *testing.T) {
	_, err := NewAnchorStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}

func TestAnchorStore_AddAndList(t *testing.T) {
	store := newSQLiteStore(t)

	first := schema.Anchor{
		Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Backlog:   85,
		Note:      "Q1 audit",
		CreatedAt: time.Now().UTC(),
	}
	id, err := store.AddAnchor(first)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	second := schema.Anchor{
		Date:      time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Backlog:   120,
		CreatedAt: time.Now().UTC(),
	}
	_, err = store.AddAnchor(second)
	require.NoError(t, err)

	anchors, err := store.ListAnchors(10)
	require.NoError(t, err)
	require.Len(t, anchors, 2)

	// Newest first
	assert.Equal(t, 120.0, anchors[0].Backlog)
	assert.Equal(t, 85.0, anchors[1].Backlog)
	assert.Equal(t, "Q1 audit", anchors[1].Note)
	assert.True(t, anchors[1].Date.Equal(first.Date))
}

func TestAnchorStore_ListLimit(t *testing.T) {
	store := newSQLiteStore(t)

	for i := range 5 {
		_, err := store.AddAnchor(schema.Anchor{
			Date:      time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Backlog:   float64(i),
			CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	anchors, err := store.ListAnchors(3)
	require.NoError(t, err)
	assert.Len(t, anchors, 3)
}

func TestAnchorStore_LatestAnchor(t *testing.T) {
	store := newSQLiteStore(t)

	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	june := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := store.AddAnchor(schema.Anchor{Date: march, Backlog: 85, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	_, err = store.AddAnchor(schema.Anchor{Date: june, Backlog: 120, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	// A lookup in April sees only the March anchor.
	anchor, err := store.LatestAnchor(time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 85.0, anchor.Backlog)

	// A lookup after June sees the June anchor.
	anchor, err = store.LatestAnchor(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 120.0, anchor.Backlog)

	// The anchor date itself is included.
	anchor, err = store.LatestAnchor(june)
	require.NoError(t, err)
	assert.Equal(t, 120.0, anchor.Backlog)
}

func TestAnchorStore_LatestAnchor_NoMatch(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.LatestAnchor(time.Now())
	assert.ErrorIs(t, err, ErrNoAnchor)

	_, err = store.AddAnchor(schema.Anchor{
		Date:      time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Backlog:   5,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	// Lookups before the only anchor still miss.
	_, err = store.LatestAnchor(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNoAnchor)
}

func TestAnchorStore_ClearAnchors(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.AddAnchor(schema.Anchor{
		Date:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Backlog:   1,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, store.ClearAnchors())

	anchors, err := store.ListAnchors(10)
	require.NoError(t, err)
	assert.Empty(t, anchors)
}

func TestAnchorStore_RunLifecycle(t *testing.T) {
	store := newSQLiteStore(t)

	start := time.Now().UTC()
	runID, err := store.BeginRun(start, schema.ReconstructMetric, schema.WeekFreq, map[string]any{"weighted": false})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime) // still running

	require.NoError(t, store.EndRun(runID, start.Add(time.Second), 42))

	runs, err = store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, string(schema.ReconstructMetric), runs[0].Metric)
	assert.Equal(t, string(schema.WeekFreq), runs[0].Frequency)
	assert.Equal(t, 42, runs[0].TotalPoints)
	require.NotNil(t, runs[0].EndTime)
	assert.Contains(t, runs[0].Params, "weighted")
}

func TestAnchorStore_GetStatus(t *testing.T) {
	store := newSQLiteStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, string(schema.SQLiteBackend), status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalAnchors)

	oldest := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	latest := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.AddAnchor(schema.Anchor{Date: oldest, Backlog: 1, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	_, err = store.AddAnchor(schema.Anchor{Date: latest, Backlog: 2, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now().UTC(), schema.BacklogMetric, schema.DayFreq, nil)
	require.NoError(t, err)
	require.NoError(t, store.EndRun(runID, time.Now().UTC(), 1))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalAnchors)
	assert.Equal(t, 1, status.TotalRuns)
	assert.True(t, status.LatestAnchorAt.Equal(latest))
	assert.True(t, status.OldestAnchorAt.Equal(oldest))
}

func TestAnchorStoreManager(t *testing.T) {
	mgr := &AnchorStoreManager{}
	assert.Nil(t, mgr.GetAnchorStore())
}
