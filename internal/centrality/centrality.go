// Package centrality derives per-building centrality scores from a proximity
// graph: degree, betweenness, closeness, and PageRank.
package centrality

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/urbanfabric/buildnet/internal/graph"
	"github.com/urbanfabric/buildnet/internal/model"
)

// Options tunes the engine. Zero values select the defaults.
type Options struct {
	// MaxExactBetweenness is the largest node count for which betweenness is
	// computed exactly; larger graphs use pivot sampling with this many
	// sources. Default 50.
	MaxExactBetweenness int
	// PivotSeed seeds pivot selection so approximate runs are reproducible.
	// Default 1.
	PivotSeed int64
	// PageRankDamping is the random-jump damping factor. Default 0.85.
	PageRankDamping float64
	// PageRankMaxIter bounds the power iteration. Default 100.
	PageRankMaxIter int
	// PageRankTol is the per-node convergence tolerance. Default 1e-6.
	PageRankTol float64
}

func (o Options) withDefaults() Options {
	if o.MaxExactBetweenness == 0 {
		o.MaxExactBetweenness = 50
	}
	if o.PivotSeed == 0 {
		o.PivotSeed = 1
	}
	if o.PageRankDamping == 0 {
		o.PageRankDamping = 0.85
	}
	if o.PageRankMaxIter == 0 {
		o.PageRankMaxIter = 100
	}
	if o.PageRankTol == 0 {
		o.PageRankTol = 1e-6
	}
	return o
}

// Result is the centrality table plus any non-fatal substitutions that
// happened while computing it.
type Result struct {
	Rows     []model.CentralityRow
	Warnings []string
}

// Compute derives all four centrality metrics for every node. The metrics
// are independent computation units: a failure in one substitutes that
// metric's documented fallback (zeros, or the uniform distribution for
// PageRank), records a warning, and never blocks the others.
func Compute(g *graph.Graph, opts Options) *Result {
	opts = opts.withDefaults()
	nodes := g.Nodes()
	n := len(nodes)
	res := &Result{}

	degreeCent := degreeCentrality(g)

	between := res.contained("betweenness_centrality", func() map[string]float64 {
		rng := rand.New(rand.NewSource(opts.PivotSeed))
		return betweenness(g, opts.MaxExactBetweenness, rng)
	}, func() map[string]float64 {
		return zeroes(nodes)
	})

	closenessScores := res.contained("closeness_centrality", func() map[string]float64 {
		return closeness(g)
	}, func() map[string]float64 {
		return zeroes(nodes)
	})

	rank := res.contained("pagerank", func() map[string]float64 {
		return pagerank(g, opts)
	}, func() map[string]float64 {
		uniform := make(map[string]float64, n)
		for _, id := range nodes {
			uniform[id] = 1 / float64(n)
		}
		return uniform
	})

	res.Rows = make([]model.CentralityRow, 0, n)
	for _, id := range nodes {
		res.Rows = append(res.Rows, model.CentralityRow{
			BuildingID:            id,
			Degree:                g.Degree(id),
			DegreeCentrality:      degreeCent[id],
			BetweennessCentrality: between[id],
			ClosenessCentrality:   closenessScores[id],
			PageRank:              rank[id],
		})
	}
	return res
}

// contained runs one metric, replacing a panic with the fallback value and a
// recorded warning.
func (r *Result) contained(metric string, fn, fallback func() map[string]float64) (out map[string]float64) {
	defer func() {
		if rec := recover(); rec != nil {
			warning := fmt.Sprintf("%s failed (%v), substituted fallback", metric, rec)
			r.Warnings = append(r.Warnings, warning)
			zap.L().Warn("centrality: metric fallback",
				zap.String("metric", metric), zap.Any("cause", rec))
			out = fallback()
		}
	}()
	return fn()
}

func zeroes(nodes []string) map[string]float64 {
	m := make(map[string]float64, len(nodes))
	for _, id := range nodes {
		m[id] = 0
	}
	return m
}

// degreeCentrality is degree/(N-1), or 0 for graphs with a single node.
func degreeCentrality(g *graph.Graph) map[string]float64 {
	nodes := g.Nodes()
	n := len(nodes)
	out := make(map[string]float64, n)
	for _, id := range nodes {
		if n > 1 {
			out[id] = float64(g.Degree(id)) / float64(n-1)
		} else {
			out[id] = 0
		}
	}
	return out
}

// closeness computes weighted closeness centrality per connected component,
// using only intra-component distances. A node in a component of size k gets
// (k-1)/sum(d); isolated single-node components get 0.
func closeness(g *graph.Graph) map[string]float64 {
	out := make(map[string]float64, g.NumNodes())

	for _, component := range g.Components() {
		if len(component) < 2 {
			for _, id := range component {
				out[id] = 0
			}
			continue
		}
		for _, id := range component {
			dist := g.ShortestDistances(id, -1)
			var total float64
			for peer, d := range dist {
				if peer != id {
					total += d
				}
			}
			if total > 0 {
				out[id] = float64(len(component)-1) / total
			} else {
				out[id] = 0
			}
		}
	}
	return out
}

// pagerank runs weighted power iteration with the edge distance as the
// transition weight, matching the convention of treating weight as tie
// strength. Nodes without edges donate their mass uniformly. The returned
// scores sum to 1.
func pagerank(g *graph.Graph, opts Options) map[string]float64 {
	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return map[string]float64{}
	}

	weightSum := make(map[string]float64, n)
	for _, id := range nodes {
		for _, w := range g.Neighbors(id) {
			weightSum[id] += w
		}
	}

	scores := make(map[string]float64, n)
	for _, id := range nodes {
		scores[id] = 1 / float64(n)
	}

	next := make(map[string]float64, n)
	for iter := 0; iter < opts.PageRankMaxIter; iter++ {
		var danglingMass float64
		for _, id := range nodes {
			if weightSum[id] == 0 {
				danglingMass += scores[id]
			}
		}

		base := (1-opts.PageRankDamping)/float64(n) +
			opts.PageRankDamping*danglingMass/float64(n)
		for _, id := range nodes {
			sum := base
			for neighbor, w := range g.Neighbors(id) {
				if weightSum[neighbor] > 0 {
					sum += opts.PageRankDamping * scores[neighbor] * w / weightSum[neighbor]
				}
			}
			next[id] = sum
		}

		var diff float64
		for _, id := range nodes {
			d := next[id] - scores[id]
			if d < 0 {
				d = -d
			}
			diff += d
		}
		scores, next = next, scores
		if diff < opts.PageRankTol*float64(n) {
			break
		}
	}
	return scores
}
