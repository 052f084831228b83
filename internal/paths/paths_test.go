package paths

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanfabric/buildnet/internal/graph"
	"github.com/urbanfabric/buildnet/internal/model"
)

func pathGraph(n int) *graph.Graph {
	g := graph.New()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%02d", i)
		g.AddNode(model.Building{ID: ids[i]})
	}
	for i := 0; i < n-1; i++ {
		g.AddEdge(ids[i], ids[i+1], 10)
	}
	return g
}

func TestSampleAllPairsUnderLimit(t *testing.T) {
	g := pathGraph(4) // 6 pairs

	res := Sample(g, 1000, 1)
	assert.Equal(t, 6, res.TotalPairs)
	assert.Equal(t, 6, res.CalculatedPairs)
	require.Len(t, res.Paths, 6)

	// End-to-end path along the line.
	assert.Equal(t, []string{"n00", "n01", "n02", "n03"}, res.Paths["n00->n03"])
	assert.InDelta(t, 30.0, res.PathLengths["n00->n03"], 1e-9)
	assert.InDelta(t, 10.0, res.PathLengths["n01->n02"], 1e-9)
}

func TestSampleCapsPairCount(t *testing.T) {
	g := pathGraph(20) // 190 pairs

	res := Sample(g, 25, 1)
	assert.Equal(t, 190, res.TotalPairs)
	assert.Equal(t, 25, res.CalculatedPairs)
	assert.Len(t, res.Paths, 25)
	assert.Len(t, res.PathLengths, 25)
}

func TestSampleSeedReproducibility(t *testing.T) {
	g := pathGraph(20)

	first := Sample(g, 25, 42)
	second := Sample(g, 25, 42)
	assert.Equal(t, first.Paths, second.Paths)
	assert.Equal(t, first.PathLengths, second.PathLengths)

	other := Sample(g, 25, 7)
	assert.NotEqual(t, first.Paths, other.Paths)
}

func TestSampleSkipsUnreachablePairs(t *testing.T) {
	g := graph.New()
	for _, id := range []string{"a", "b", "island"} {
		g.AddNode(model.Building{ID: id})
	}
	g.AddEdge("a", "b", 5)

	res := Sample(g, 1000, 1)
	assert.Equal(t, 3, res.TotalPairs)
	assert.Equal(t, 1, res.CalculatedPairs)
	require.Contains(t, res.Paths, "a->b")
	assert.NotContains(t, res.Paths, "a->island")
	assert.NotContains(t, res.Paths, "b->island")
}

func TestSampleDefaultsMaxPairs(t *testing.T) {
	g := pathGraph(3)
	res := Sample(g, 0, 1)
	assert.Equal(t, 3, res.CalculatedPairs)
}

func TestSampleEmptyGraph(t *testing.T) {
	res := Sample(graph.New(), 1000, 1)
	assert.Zero(t, res.TotalPairs)
	assert.Zero(t, res.CalculatedPairs)
	assert.Empty(t, res.Paths)
}
