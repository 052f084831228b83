// Package access scores building accessibility from raw spatial proximity
// and graph reachability.
package access

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/urbanfabric/buildnet/internal/geodesy"
	"github.com/urbanfabric/buildnet/internal/graph"
	"github.com/urbanfabric/buildnet/internal/model"
)

// DefaultRadiusM is the spatial and network reach radius used when the
// caller does not override it.
const DefaultRadiusM = 500.0

// Result is the accessibility table plus non-fatal warnings. Rows cover the
// full building set: buildings with no neighbors still appear with zero
// counts and a nil average path distance.
type Result struct {
	Rows     []model.AccessibilityRow
	Warnings []string
}

// Compute derives all four accessibility measures for every building in the
// batch. The graph is consumed read-only; buildings absent from the graph
// (or isolated in it) get zero reach counts and a missing path distance
// rather than being dropped.
func Compute(g *graph.Graph, buildings []model.Building, radiusM float64) *Result {
	if radiusM <= 0 {
		radiusM = DefaultRadiusM
	}
	res := &Result{}

	distCounts := distanceReach(buildings, radiusM)
	netCounts := res.networkReach(g, radiusM)
	avgDists := res.averagePathDistance(g)
	weighted := weightedAccessibility(buildings, distCounts)

	res.Rows = make([]model.AccessibilityRow, 0, len(buildings))
	for _, b := range buildings {
		res.Rows = append(res.Rows, model.AccessibilityRow{
			BuildingID:            b.ID,
			DistanceCount:         distCounts[b.ID],
			NetworkReachableCount: netCounts[b.ID],
			AvgPathDistanceM:      avgDists[b.ID],
			WeightedAccessibility: weighted[b.ID],
		})
	}
	return res
}

// distanceReach counts, for each building, the other buildings whose
// centroid lies within radiusM geodesic meters. Pairwise evaluation is
// O(n²), acceptable at the target scale.
func distanceReach(buildings []model.Building, radiusM float64) map[string]int {
	counts := make(map[string]int, len(buildings))
	for _, b := range buildings {
		counts[b.ID] = 0
	}
	for i := 0; i < len(buildings); i++ {
		for j := i + 1; j < len(buildings); j++ {
			a, b := buildings[i], buildings[j]
			d := geodesy.Geodesic(a.CentroidLon, a.CentroidLat, b.CentroidLon, b.CentroidLat)
			if d <= radiusM {
				counts[a.ID]++
				counts[b.ID]++
			}
		}
	}
	return counts
}

// networkReach counts, per node, the peers reachable within a network
// distance of radiusM. The search itself is bounded by the cutoff, so it
// stops expanding past the radius instead of building full trees.
func (r *Result) networkReach(g *graph.Graph, radiusM float64) map[string]int {
	counts := make(map[string]int, g.NumNodes())
	for _, id := range g.Nodes() {
		reach := r.contained(fmt.Sprintf("network reach for %s", id), func() int {
			return len(g.ShortestDistances(id, radiusM)) - 1
		})
		if reach < 0 {
			reach = 0
		}
		counts[id] = reach
	}
	return counts
}

// averagePathDistance returns, per node, the mean weighted shortest-path
// distance to every peer in its connected component. Nodes with no reachable
// peers map to nil; infinities never reach the output.
func (r *Result) averagePathDistance(g *graph.Graph) map[string]*float64 {
	out := make(map[string]*float64, g.NumNodes())
	for _, component := range g.Components() {
		for _, id := range component {
			if len(component) < 2 {
				out[id] = nil
				continue
			}
			dist := g.ShortestDistances(id, -1)
			var total float64
			var peers int
			for peer, d := range dist {
				if peer != id {
					total += d
					peers++
				}
			}
			if peers == 0 {
				out[id] = nil
				continue
			}
			out[id] = model.Float64Ptr(total / float64(peers))
		}
	}
	return out
}

// weightedAccessibility scales the distance reach count by 1+normalizedArea.
// Area is min-max normalized across the batch; when every building has the
// same area the multiplier is uniformly 1.0, so the score is count*2.
func weightedAccessibility(buildings []model.Building, distCounts map[string]int) map[string]float64 {
	out := make(map[string]float64, len(buildings))
	if len(buildings) == 0 {
		return out
	}

	minArea, maxArea := buildings[0].AreaM2, buildings[0].AreaM2
	for _, b := range buildings[1:] {
		if b.AreaM2 < minArea {
			minArea = b.AreaM2
		}
		if b.AreaM2 > maxArea {
			maxArea = b.AreaM2
		}
	}

	areaRange := maxArea - minArea
	for _, b := range buildings {
		normalized := 1.0
		if areaRange > 0 {
			normalized = (b.AreaM2 - minArea) / areaRange
		}
		out[b.ID] = float64(distCounts[b.ID]) * (1 + normalized)
	}
	return out
}

// contained runs one per-node computation, converting a panic into a zero
// result and a warning.
func (r *Result) contained(what string, fn func() int) (out int) {
	defer func() {
		if rec := recover(); rec != nil {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s failed (%v), using 0", what, rec))
			zap.L().Warn("access: computation fallback", zap.String("what", what), zap.Any("cause", rec))
			out = 0
		}
	}()
	return fn()
}
