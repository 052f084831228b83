package graph

import (
	"github.com/fogleman/delaunay"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/urbanfabric/buildnet/internal/geodesy"
	"github.com/urbanfabric/buildnet/internal/model"
)

// Metric selects how centroid-to-centroid distance is measured.
type Metric string

const (
	// MetricGeodesic measures great-circle distance on WGS84 coordinates.
	MetricGeodesic Metric = "geodesic"
	// MetricPlanar measures Euclidean distance; use with projected coordinates.
	MetricPlanar Metric = "planar"
)

// Strategy selects one of the two graph construction methods. Exactly one of
// the concrete types below is passed to Build.
type Strategy interface {
	strategyName() string
}

// Threshold connects every pair of buildings whose separation does not exceed
// RadiusM. With UseEdgeDistance set, pairs with footprints on both sides are
// measured boundary-to-boundary; everything else measures centroids with the
// configured metric.
type Threshold struct {
	RadiusM         float64
	Metric          Metric
	UseEdgeDistance bool
}

func (Threshold) strategyName() string { return "threshold" }

// Delaunay connects buildings along the edges of a planar Delaunay
// triangulation of their centroids. It takes no distance parameter and yields
// a sparse, locally connected graph.
type Delaunay struct{}

func (Delaunay) strategyName() string { return "delaunay" }

// Build constructs the proximity graph for a set of buildings using the given
// strategy. Footprints may be nil; they are consulted only by the Threshold
// strategy when edge-to-edge measurement is requested. Every building becomes
// a node regardless of how many edges it receives.
func Build(strategy Strategy, buildings []model.Building, footprints map[string]*geom.Polygon) (*Graph, error) {
	g := New()
	for _, b := range buildings {
		g.AddNode(b)
	}

	log := zap.L().With(
		zap.String("strategy", strategy.strategyName()),
		zap.Int("buildings", len(buildings)),
	)

	switch s := strategy.(type) {
	case Threshold:
		if s.RadiusM <= 0 {
			return nil, eris.Errorf("graph: threshold radius must be positive, got %g", s.RadiusM)
		}
		buildThreshold(g, s, buildings, footprints)
	case Delaunay:
		buildDelaunay(g, buildings)
	default:
		return nil, eris.Errorf("graph: unknown construction strategy %T", strategy)
	}

	log.Info("graph built", zap.Int("nodes", g.NumNodes()), zap.Int("edges", g.NumEdges()))
	return g, nil
}

// buildThreshold evaluates every unordered pair of buildings, adding an edge
// when the measured distance is within the radius. Pair evaluation is O(n²),
// which is the intended cost at the target scale of low thousands.
func buildThreshold(g *Graph, s Threshold, buildings []model.Building, footprints map[string]*geom.Polygon) {
	for i := 0; i < len(buildings); i++ {
		for j := i + 1; j < len(buildings); j++ {
			a, b := buildings[i], buildings[j]
			d := pairDistance(s, a, b, footprints)
			if d <= s.RadiusM {
				g.AddEdge(a.ID, b.ID, d)
			}
		}
	}
}

// pairDistance measures one building pair under the threshold strategy rules.
// Edge-to-edge measurement silently degrades to centroid distance when either
// footprint is missing or unusable.
func pairDistance(s Threshold, a, b model.Building, footprints map[string]*geom.Polygon) float64 {
	if s.UseEdgeDistance {
		fa, fb := footprints[a.ID], footprints[b.ID]
		if fa != nil && fb != nil {
			d, err := geodesy.PolygonDistance(fa, fb)
			if err == nil {
				return d
			}
			zap.L().Debug("graph: footprint distance failed, using centroids",
				zap.String("a", a.ID), zap.String("b", b.ID), zap.Error(err))
		}
	}
	if s.Metric == MetricPlanar {
		return geodesy.Planar(a.CentroidLon, a.CentroidLat, b.CentroidLon, b.CentroidLat)
	}
	return geodesy.Geodesic(a.CentroidLon, a.CentroidLat, b.CentroidLon, b.CentroidLat)
}

// buildDelaunay triangulates the building centroids and adds one edge per
// triangle side, weighted by geodesic centroid distance. Inputs with fewer
// than three points, or where triangulation fails outright (for example all
// points collinear), leave the graph without edges.
func buildDelaunay(g *Graph, buildings []model.Building) {
	if len(buildings) < 3 {
		zap.L().Warn("graph: too few buildings for triangulation", zap.Int("count", len(buildings)))
		return
	}

	points := make([]delaunay.Point, len(buildings))
	for i, b := range buildings {
		points[i] = delaunay.Point{X: b.CentroidLon, Y: b.CentroidLat}
	}

	tri, err := delaunay.Triangulate(points)
	if err != nil {
		zap.L().Warn("graph: triangulation failed, graph has no edges", zap.Error(err))
		return
	}

	for t := 0; t < len(tri.Triangles); t += 3 {
		for k := 0; k < 3; k++ {
			i := tri.Triangles[t+k]
			j := tri.Triangles[t+(k+1)%3]
			a, b := buildings[i], buildings[j]
			if g.HasEdge(a.ID, b.ID) {
				continue
			}
			d := geodesy.Geodesic(a.CentroidLon, a.CentroidLat, b.CentroidLon, b.CentroidLat)
			g.AddEdge(a.ID, b.ID, d)
		}
	}
}
