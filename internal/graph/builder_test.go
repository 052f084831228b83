package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/urbanfabric/buildnet/internal/geodesy"
	"github.com/urbanfabric/buildnet/internal/model"
)

// clusterAndOutlier is three mutually close buildings near the origin plus a
// distant fourth. At a 200m threshold the cluster is pairwise connected and
// the outlier is isolated.
func clusterAndOutlier() []model.Building {
	return []model.Building{
		{ID: "b1", CentroidLon: 0, CentroidLat: 0, AreaM2: 120},
		{ID: "b2", CentroidLon: 0, CentroidLat: 0.001, AreaM2: 120},
		{ID: "b3", CentroidLon: 0.0005, CentroidLat: 0.0005, AreaM2: 120},
		{ID: "b4", CentroidLon: 10, CentroidLat: 10, AreaM2: 120},
	}
}

func TestBuildThreshold(t *testing.T) {
	buildings := clusterAndOutlier()
	g, err := Build(Threshold{RadiusM: 200, Metric: MetricGeodesic}, buildings, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, g.NumNodes())
	assert.Equal(t, 3, g.NumEdges())
	assert.True(t, g.HasEdge("b1", "b2"))
	assert.True(t, g.HasEdge("b1", "b3"))
	assert.True(t, g.HasEdge("b2", "b3"))
	assert.Zero(t, g.Degree("b4"), "outlier stays isolated but is never dropped")

	// Edge weight equals the true geodesic distance.
	w, ok := g.Weight("b1", "b2")
	require.True(t, ok)
	assert.Equal(t, geodesy.Geodesic(0, 0, 0, 0.001), w)
	assert.LessOrEqual(t, w, 200.0)
}

func TestBuildThresholdMatchesExhaustivePairs(t *testing.T) {
	buildings := []model.Building{
		{ID: "a", CentroidLon: 28.97, CentroidLat: 41.01},
		{ID: "b", CentroidLon: 28.971, CentroidLat: 41.011},
		{ID: "c", CentroidLon: 28.973, CentroidLat: 41.012},
		{ID: "d", CentroidLon: 28.98, CentroidLat: 41.02},
		{ID: "e", CentroidLon: 28.99, CentroidLat: 41.03},
	}
	const threshold = 300.0

	g, err := Build(Threshold{RadiusM: threshold, Metric: MetricGeodesic}, buildings, nil)
	require.NoError(t, err)

	for i := 0; i < len(buildings); i++ {
		for j := i + 1; j < len(buildings); j++ {
			a, b := buildings[i], buildings[j]
			d := geodesy.Geodesic(a.CentroidLon, a.CentroidLat, b.CentroidLon, b.CentroidLat)
			if d <= threshold {
				assert.True(t, g.HasEdge(a.ID, b.ID), "pair %s-%s at %.1fm should be linked", a.ID, b.ID, d)
				w, _ := g.Weight(a.ID, b.ID)
				assert.Equal(t, d, w)
			} else {
				assert.False(t, g.HasEdge(a.ID, b.ID), "pair %s-%s at %.1fm should not be linked", a.ID, b.ID, d)
			}
		}
	}
	for _, b := range buildings {
		assert.False(t, g.HasEdge(b.ID, b.ID), "no self loops")
	}
}

func TestBuildThresholdPlanarMetric(t *testing.T) {
	buildings := []model.Building{
		{ID: "a", CentroidLon: 0, CentroidLat: 0},
		{ID: "b", CentroidLon: 30, CentroidLat: 40},
		{ID: "c", CentroidLon: 1000, CentroidLat: 1000},
	}
	g, err := Build(Threshold{RadiusM: 60, Metric: MetricPlanar}, buildings, nil)
	require.NoError(t, err)

	require.True(t, g.HasEdge("a", "b"))
	w, _ := g.Weight("a", "b")
	assert.Equal(t, 50.0, w)
	assert.False(t, g.HasEdge("a", "c"))
}

func TestBuildThresholdEdgeDistance(t *testing.T) {
	// Two large footprints whose boundaries are 10 units apart while their
	// centroids are 110 apart; a third building has no footprint.
	footprint := func(x float64) *geom.Polygon {
		return geom.NewPolygonFlat(geom.XY, []float64{
			x, 0, x + 100, 0, x + 100, 50, x, 50, x, 0,
		}, []int{10})
	}
	buildings := []model.Building{
		{ID: "a", CentroidLon: 25, CentroidLat: 25},
		{ID: "b", CentroidLon: 135, CentroidLat: 25},
		{ID: "c", CentroidLon: 25, CentroidLat: 100},
	}
	footprints := map[string]*geom.Polygon{
		"a": footprint(-25),
		"b": footprint(85),
	}

	g, err := Build(Threshold{RadiusM: 60, Metric: MetricPlanar, UseEdgeDistance: true}, buildings, footprints)
	require.NoError(t, err)

	// a-b measured boundary-to-boundary: 10 <= 60.
	require.True(t, g.HasEdge("a", "b"))
	w, _ := g.Weight("a", "b")
	assert.InDelta(t, 10.0, w, 1e-9)

	// a-c degrades to centroid distance (75) because c has no footprint.
	assert.False(t, g.HasEdge("a", "c"))
}

func TestBuildThresholdRejectsBadRadius(t *testing.T) {
	_, err := Build(Threshold{RadiusM: 0}, clusterAndOutlier(), nil)
	assert.Error(t, err)
	_, err = Build(Threshold{RadiusM: -5}, clusterAndOutlier(), nil)
	assert.Error(t, err)
}

func TestBuildDelaunay(t *testing.T) {
	buildings := clusterAndOutlier()
	g, err := Build(Delaunay{}, buildings, nil)
	require.NoError(t, err)

	// Node set equals the input set regardless of geometry.
	assert.Equal(t, []string{"b1", "b2", "b3", "b4"}, g.Nodes())
	assert.Greater(t, g.NumEdges(), 0)

	// Triangulation takes no threshold: even the distant outlier is linked.
	assert.Greater(t, g.Degree("b4"), 0)

	// Every edge weight is the true geodesic distance between its endpoints.
	for _, e := range g.Edges() {
		a, _ := g.Building(e.Source)
		b, _ := g.Building(e.Target)
		assert.Equal(t, geodesy.Geodesic(a.CentroidLon, a.CentroidLat, b.CentroidLon, b.CentroidLat), e.DistanceM)
	}
}

func TestBuildDelaunayDegenerate(t *testing.T) {
	tests := []struct {
		name      string
		buildings []model.Building
	}{
		{name: "empty", buildings: nil},
		{name: "single", buildings: []model.Building{{ID: "a"}}},
		{name: "pair", buildings: []model.Building{
			{ID: "a", CentroidLon: 0, CentroidLat: 0},
			{ID: "b", CentroidLon: 1, CentroidLat: 1},
		}},
		{name: "collinear", buildings: []model.Building{
			{ID: "a", CentroidLon: 0, CentroidLat: 0},
			{ID: "b", CentroidLon: 1, CentroidLat: 0},
			{ID: "c", CentroidLon: 2, CentroidLat: 0},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(Delaunay{}, tt.buildings, nil)
			require.NoError(t, err)
			assert.Equal(t, len(tt.buildings), g.NumNodes())
			assert.Zero(t, g.NumEdges())
		})
	}
}
