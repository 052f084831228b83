package access

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanfabric/buildnet/internal/centrality"
	"github.com/urbanfabric/buildnet/internal/graph"
	"github.com/urbanfabric/buildnet/internal/model"
	"github.com/urbanfabric/buildnet/internal/netstats"
)

// clusterWithOutlier is three buildings within a couple hundred meters of each
// other plus one roughly 1500 km away.
func clusterWithOutlier() []model.Building {
	return []model.Building{
		{ID: "b1", CentroidLon: 0, CentroidLat: 0, AreaM2: 100},
		{ID: "b2", CentroidLon: 0, CentroidLat: 0.001, AreaM2: 100},
		{ID: "b3", CentroidLon: 0.0005, CentroidLat: 0.0005, AreaM2: 100},
		{ID: "b4", CentroidLon: 10, CentroidLat: 10, AreaM2: 100},
	}
}

func proximityGraph(buildings []model.Building) *graph.Graph {
	g := graph.New()
	for _, b := range buildings {
		g.AddNode(b)
	}
	g.AddEdge("b1", "b2", 110.6)
	g.AddEdge("b1", "b3", 78.2)
	g.AddEdge("b2", "b3", 78.2)
	return g
}

func rowsByID(rows []model.AccessibilityRow) map[string]model.AccessibilityRow {
	out := make(map[string]model.AccessibilityRow, len(rows))
	for _, r := range rows {
		out[r.BuildingID] = r
	}
	return out
}

func TestComputeClusterWithOutlier(t *testing.T) {
	buildings := clusterWithOutlier()
	g := proximityGraph(buildings)

	res := Compute(g, buildings, 500)
	require.Len(t, res.Rows, 4)
	assert.Empty(t, res.Warnings)
	rows := rowsByID(res.Rows)

	// The three clustered buildings see each other inside 500 m; the outlier
	// sees nobody.
	for _, id := range []string{"b1", "b2", "b3"} {
		assert.Equal(t, 2, rows[id].DistanceCount, id)
		assert.Equal(t, 2, rows[id].NetworkReachableCount, id)
		require.NotNil(t, rows[id].AvgPathDistanceM, id)
	}
	assert.Zero(t, rows["b4"].DistanceCount)
	assert.Zero(t, rows["b4"].NetworkReachableCount)
	assert.Nil(t, rows["b4"].AvgPathDistanceM)

	// b1's peers sit 110.6 m and 78.2 m away along the graph.
	assert.InDelta(t, (110.6+78.2)/2, *rows["b1"].AvgPathDistanceM, 1e-9)

	// Uniform areas normalize to 1.0, so weighted accessibility is count*2.
	assert.InDelta(t, 4.0, rows["b1"].WeightedAccessibility, 1e-9)
	assert.Zero(t, rows["b4"].WeightedAccessibility)
}

func TestDistanceReachIsSymmetric(t *testing.T) {
	buildings := clusterWithOutlier()
	counts := distanceReach(buildings, 500)

	var total int
	for _, c := range counts {
		total += c
	}
	// Every within-radius pair contributes exactly two counts.
	assert.Zero(t, total%2)
	assert.Equal(t, 6, total)
}

func TestNetworkReachHonorsCutoff(t *testing.T) {
	g := graph.New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(model.Building{ID: id})
	}
	g.AddEdge("a", "b", 300)
	g.AddEdge("b", "c", 300)

	res := &Result{}
	counts := res.networkReach(g, 500)

	// a reaches b at 300 but not c at 600.
	assert.Equal(t, 1, counts["a"])
	assert.Equal(t, 2, counts["b"])
	assert.Equal(t, 1, counts["c"])
}

func TestWeightedAccessibilityAreaScaling(t *testing.T) {
	buildings := []model.Building{
		{ID: "small", AreaM2: 100},
		{ID: "mid", AreaM2: 300},
		{ID: "large", AreaM2: 500},
	}
	counts := map[string]int{"small": 2, "mid": 2, "large": 2}

	out := weightedAccessibility(buildings, counts)

	assert.InDelta(t, 2.0, out["small"], 1e-9)  // 2 * (1 + 0)
	assert.InDelta(t, 3.0, out["mid"], 1e-9)    // 2 * (1 + 0.5)
	assert.InDelta(t, 4.0, out["large"], 1e-9)  // 2 * (1 + 1)
}

func TestComputeDefaultsRadius(t *testing.T) {
	buildings := clusterWithOutlier()
	g := proximityGraph(buildings)

	withDefault := Compute(g, buildings, 0)
	explicit := Compute(g, buildings, DefaultRadiusM)
	assert.Equal(t, explicit.Rows, withDefault.Rows)
}

// The graph is read-only after construction, so the engines may consume a
// freshly built graph concurrently without coordination. Run with -race.
func TestEnginesShareFreshGraphConcurrently(t *testing.T) {
	buildings := clusterWithOutlier()
	g, err := graph.Build(graph.Threshold{RadiusM: 200, Metric: graph.MetricGeodesic}, buildings, nil)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		centRes *centrality.Result
		accRes  *Result
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		centRes = centrality.Compute(g, centrality.Options{})
	}()
	go func() {
		defer wg.Done()
		accRes = Compute(g, buildings, 500)
	}()
	wg.Wait()

	require.Len(t, centRes.Rows, 4)
	require.Len(t, accRes.Rows, 4)
}

// Drives one graph through the statistics and accessibility engines together:
// three clustered buildings plus an isolate give two components, with the
// isolate reporting zero reach and a missing path distance.
func TestClusterScenarioEndToEnd(t *testing.T) {
	buildings := clusterWithOutlier()
	g, err := graph.Build(graph.Threshold{RadiusM: 200, Metric: graph.MetricGeodesic}, buildings, nil)
	require.NoError(t, err)
	require.Equal(t, 3, g.NumEdges())

	stats := netstats.Compute(g)
	assert.Equal(t, 4, stats.NumNodes)
	assert.Equal(t, 2, stats.NumComponents)
	assert.False(t, stats.IsConnected)
	assert.Nil(t, stats.AvgShortestPathLength)

	rows := rowsByID(Compute(g, buildings, 500).Rows)
	for _, id := range []string{"b1", "b2", "b3"} {
		assert.Equal(t, 2, rows[id].DistanceCount, id)
		assert.Equal(t, 2, rows[id].NetworkReachableCount, id)
		require.NotNil(t, rows[id].AvgPathDistanceM, id)
	}
	assert.Zero(t, rows["b4"].DistanceCount)
	assert.Zero(t, rows["b4"].NetworkReachableCount)
	assert.Nil(t, rows["b4"].AvgPathDistanceM)
	assert.Zero(t, rows["b4"].WeightedAccessibility)
}

func TestComputeEmptyBatch(t *testing.T) {
	res := Compute(graph.New(), nil, 500)
	assert.Empty(t, res.Rows)
	assert.Empty(t, res.Warnings)
}
