package db

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "hunter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_HarvestRuns(t *testing.T) {
	s := newTestStore(t)

	for i, label := range []string{"first", "second"} {
		id, err := s.InsertHarvestRun(HarvestRun{
			Token: "0xtoken", Label: label, Direction: "buy", Path: "wallets/buy_" + label + ".txt",
			StartBlock: 100, EndBlock: 900, Pages: i + 1, Added: 10 * (i + 1), Complete: true,
		})
		require.NoError(t, err)
		assert.EqualValues(t, i+1, id)
	}

	runs, err := s.RecentHarvestRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[0].Label, "newest first")
	assert.EqualValues(t, 900, runs[0].EndBlock)
	assert.Equal(t, 20, runs[0].Added)
	assert.True(t, runs[0].Complete)
	assert.False(t, runs[0].CreatedAt.IsZero())

	runs, err = s.RecentHarvestRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_GradeRun(t *testing.T) {
	s := newTestStore(t)
	addr := "0xAbC0000000000000000000000000000000000001"

	runID, err := s.InsertGradeRun(GradeRun{Name: "may", Report: "graded/may.txt", Lists: 3, Total: 5},
		[]GradedWallet{{Address: addr, Labels: []string{"A", "B"}}})
	require.NoError(t, err)

	got, err := s.GradedWalletsFor(strings.ToLower(addr))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, runID, got[0].GradeRunID)
	assert.Equal(t, []string{"A", "B"}, got[0].Labels)

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats["grade_runs"])
	assert.EqualValues(t, 1, stats["graded_wallets"])
	assert.EqualValues(t, 0, stats["tracking_hits"])
}

func TestStore_TrackingRun(t *testing.T) {
	s := newTestStore(t)

	_, err := s.InsertTrackingRun(TrackingRun{
		Since: time.Date(2022, 5, 22, 9, 0, 0, 0, time.UTC), SinceBlock: 14830000,
		Path: "tracking_results/result_x.txt", Wallets: 6, Tokens: 2,
	}, []TrackingHit{
		{Token: "T6", Buyers: []string{"w1", "w2", "w3", "w4", "w5", "w6"}},
		{Token: "T7", Buyers: []string{"a", "b", "c", "d", "e", "f", "g"}},
	})
	require.NoError(t, err)

	hits, err := s.RecentTrackingHits(10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "T7", hits[0].Token)
	assert.Len(t, hits[0].Buyers, 7)
	assert.Equal(t, hits[0].RunID, hits[1].RunID)

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats["tracking_runs"])
	assert.EqualValues(t, 2, stats["tracking_hits"])
}
