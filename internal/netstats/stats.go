// Package netstats computes descriptive statistics over a finished proximity
// graph.
package netstats

import (
	"go.uber.org/zap"

	"github.com/urbanfabric/buildnet/internal/graph"
	"github.com/urbanfabric/buildnet/internal/model"
)

// Compute derives the full statistics record for a graph. Every metric is
// computed independently: a failure inside one metric yields that metric's
// missing value and never aborts the others. Metrics that are undefined for
// the graph at hand (empty, single-node, disconnected) report nil rather
// than a fabricated number.
func Compute(g *graph.Graph) *model.NetworkStats {
	stats := &model.NetworkStats{
		NumNodes: g.NumNodes(),
		NumEdges: g.NumEdges(),
	}

	contain("density", func() {
		stats.Density = density(g)
	})
	contain("average_degree", func() {
		stats.AverageDegree = averageDegree(g)
	})
	contain("connectivity", func() {
		components := g.Components()
		stats.NumComponents = len(components)
		stats.IsConnected = g.NumNodes() > 0 && len(components) == 1
	})
	contain("average_shortest_path_length", func() {
		// Defined only for connected graphs; it is never approximated over
		// disconnected ones.
		if stats.IsConnected && g.NumNodes() > 1 {
			stats.AvgShortestPathLength = avgShortestPathLength(g)
		}
	})
	contain("average_clustering", func() {
		if g.NumNodes() > 0 {
			stats.AvgClustering = model.Float64Ptr(averageClustering(g))
		}
	})

	return stats
}

// contain runs one metric computation, converting a panic into the metric's
// missing value and a warning log.
func contain(metric string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("netstats: metric computation failed",
				zap.String("metric", metric), zap.Any("cause", r))
		}
	}()
	fn()
}

func density(g *graph.Graph) float64 {
	n := g.NumNodes()
	if n <= 1 {
		return 0
	}
	return 2 * float64(g.NumEdges()) / (float64(n) * float64(n-1))
}

func averageDegree(g *graph.Graph) float64 {
	n := g.NumNodes()
	if n == 0 {
		return 0
	}
	return 2 * float64(g.NumEdges()) / float64(n)
}

// avgShortestPathLength averages weighted shortest-path distances over all
// ordered node pairs of a connected graph.
func avgShortestPathLength(g *graph.Graph) *float64 {
	nodes := g.Nodes()
	n := len(nodes)

	var total float64
	for _, source := range nodes {
		dist := g.ShortestDistances(source, -1)
		for id, d := range dist {
			if id != source {
				total += d
			}
		}
	}
	avg := total / (float64(n) * float64(n-1))
	return &avg
}

// averageClustering returns the mean local clustering coefficient. A node
// with fewer than two neighbors contributes 0.
func averageClustering(g *graph.Graph) float64 {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return 0
	}

	var total float64
	for _, v := range nodes {
		neighbors := g.Neighbors(v)
		k := len(neighbors)
		if k < 2 {
			continue
		}
		ids := make([]string, 0, k)
		for id := range neighbors {
			ids = append(ids, id)
		}
		links := 0
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if g.HasEdge(ids[i], ids[j]) {
					links++
				}
			}
		}
		total += 2 * float64(links) / (float64(k) * float64(k-1))
	}
	return total / float64(len(nodes))
}
