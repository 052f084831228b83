// Package paths exports sampled shortest paths between building pairs.
package paths

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/urbanfabric/buildnet/internal/graph"
)

// DefaultMaxPairs caps how many node pairs get a full path computation
// before sampling kicks in.
const DefaultMaxPairs = 1000

// Result maps "source->target" keys to ordered node sequences and weighted
// lengths. TotalPairs counts every unordered pair in the graph;
// CalculatedPairs counts the pairs for which a path was actually found.
type Result struct {
	Paths           map[string][]string `json:"paths"`
	PathLengths     map[string]float64  `json:"path_lengths"`
	TotalPairs      int                 `json:"total_pairs"`
	CalculatedPairs int                 `json:"calculated_pairs"`
}

// Sample computes shortest paths for all unordered node pairs, or for a
// uniform random sample without replacement when the pair count exceeds
// maxPairs. A non-negative seed makes the sample reproducible; a negative
// seed draws a fresh seed from the clock. Unreachable pairs are skipped,
// not reported as errors.
func Sample(g *graph.Graph, maxPairs int, seed int64) *Result {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}

	nodes := g.Nodes()
	n := len(nodes)
	totalPairs := n * (n - 1) / 2

	res := &Result{
		Paths:       make(map[string][]string),
		PathLengths: make(map[string]float64),
		TotalPairs:  totalPairs,
	}
	if totalPairs == 0 {
		return res
	}

	pairs := make([][2]string, 0, totalPairs)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, [2]string{nodes[i], nodes[j]})
		}
	}

	if totalPairs > maxPairs {
		if seed < 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(pairs), func(i, j int) {
			pairs[i], pairs[j] = pairs[j], pairs[i]
		})
		pairs = pairs[:maxPairs]
		zap.L().Info("paths: sampling pairs",
			zap.Int("total_pairs", totalPairs),
			zap.Int("sampled", maxPairs),
			zap.Int64("seed", seed))
	}

	for _, pair := range pairs {
		path, length, ok := g.ShortestPath(pair[0], pair[1])
		if !ok {
			continue
		}
		key := fmt.Sprintf("%s->%s", pair[0], pair[1])
		res.Paths[key] = path
		res.PathLengths[key] = length
		res.CalculatedPairs++
	}
	return res
}
