package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanfabric/buildnet/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "buildnet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestRunRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats := &model.NetworkStats{
		NumNodes:              4,
		NumEdges:              3,
		Density:               0.5,
		AverageDegree:         1.5,
		IsConnected:           false,
		NumComponents:         2,
		AvgShortestPathLength: nil,
		AvgClustering:         model.Float64Ptr(0.75),
	}

	run, err := s.CreateRun(ctx, "threshold", 200, stats)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	loaded, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, loaded.ID)
	assert.Equal(t, "threshold", loaded.Strategy)
	assert.Equal(t, 200.0, loaded.RadiusM)
	require.NotNil(t, loaded.Stats)
	assert.Equal(t, stats.NumNodes, loaded.Stats.NumNodes)
	assert.Nil(t, loaded.Stats.AvgShortestPathLength)
	require.NotNil(t, loaded.Stats.AvgClustering)
	assert.Equal(t, 0.75, *loaded.Stats.AvgClustering)
}

func TestGetRunUnknownID(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun(context.Background(), "no-such-run")
	require.Error(t, err)
}

func TestCentralityRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "threshold", 200, &model.NetworkStats{})
	require.NoError(t, err)

	rows := []model.CentralityRow{
		{BuildingID: "b1", Degree: 2, DegreeCentrality: 0.5, BetweennessCentrality: 0.25, ClosenessCentrality: 0.8, PageRank: 0.4},
		{BuildingID: "b2", Degree: 1, DegreeCentrality: 0.25, BetweennessCentrality: 0, ClosenessCentrality: 0.6, PageRank: 0.3},
	}
	require.NoError(t, s.SaveCentrality(ctx, run.ID, rows))

	loaded, err := s.LoadCentrality(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)
}

func TestAccessibilityRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "delaunay", 500, &model.NetworkStats{})
	require.NoError(t, err)

	rows := []model.AccessibilityRow{
		{BuildingID: "b1", DistanceCount: 2, NetworkReachableCount: 2, AvgPathDistanceM: model.Float64Ptr(94.4), WeightedAccessibility: 4},
		{BuildingID: "b2", DistanceCount: 0, NetworkReachableCount: 0, AvgPathDistanceM: nil, WeightedAccessibility: 0},
	}
	require.NoError(t, s.SaveAccessibility(ctx, run.ID, rows))

	loaded, err := s.LoadAccessibility(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, rows, loaded)

	// NULL comes back as nil, not zero.
	assert.Nil(t, loaded[1].AvgPathDistanceM)
}

func TestLoadEmptyRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "threshold", 200, &model.NetworkStats{})
	require.NoError(t, err)

	centrality, err := s.LoadCentrality(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, centrality)

	accessibility, err := s.LoadAccessibility(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, accessibility)
}
