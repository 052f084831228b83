// Package graph holds the building proximity graph and its two construction
// strategies.
package graph

import (
	"math"
	"sort"

	"github.com/urbanfabric/buildnet/internal/model"
)

// Edge is one undirected graph edge. Source/Target ordering is normalized so
// that Source < Target; DistanceM doubles as the edge weight.
type Edge struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	DistanceM float64 `json:"distance_m"`
}

// Graph is an undirected, weighted, simple proximity graph over buildings.
// Nodes are keyed by building ID and carry a copy of the building record.
// The graph is read-only once construction completes: no method called by
// the analysis engines mutates any field, so concurrent readers need no
// locking. nodeIDs is kept sorted on insert to preserve that.
type Graph struct {
	buildings map[string]model.Building
	adjacency map[string]map[string]float64
	nodeIDs   []string
	numEdges  int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		buildings: make(map[string]model.Building),
		adjacency: make(map[string]map[string]float64),
	}
}

// AddNode inserts a building node. Re-adding an existing ID replaces the
// stored attributes without touching edges.
func (g *Graph) AddNode(b model.Building) {
	if _, ok := g.buildings[b.ID]; !ok {
		i := sort.SearchStrings(g.nodeIDs, b.ID)
		g.nodeIDs = append(g.nodeIDs, "")
		copy(g.nodeIDs[i+1:], g.nodeIDs[i:])
		g.nodeIDs[i] = b.ID
		g.adjacency[b.ID] = make(map[string]float64)
	}
	g.buildings[b.ID] = b
}

// AddEdge inserts an undirected edge between two existing nodes. Self-loops,
// unknown endpoints, and negative or NaN weights are rejected. Adding an
// edge that already exists overwrites its weight.
func (g *Graph) AddEdge(a, b string, distanceM float64) bool {
	if a == b {
		return false
	}
	if distanceM < 0 || math.IsNaN(distanceM) {
		return false
	}
	if _, ok := g.buildings[a]; !ok {
		return false
	}
	if _, ok := g.buildings[b]; !ok {
		return false
	}
	if _, exists := g.adjacency[a][b]; !exists {
		g.numEdges++
	}
	g.adjacency[a][b] = distanceM
	g.adjacency[b][a] = distanceM
	return true
}

// HasNode reports whether the graph contains the building ID.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.buildings[id]
	return ok
}

// HasEdge reports whether an edge exists between two nodes.
func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.adjacency[a][b]
	return ok
}

// Weight returns the edge weight between two nodes, with ok=false when no
// edge exists.
func (g *Graph) Weight(a, b string) (float64, bool) {
	w, ok := g.adjacency[a][b]
	return w, ok
}

// Degree returns the number of edges incident to a node.
func (g *Graph) Degree(id string) int {
	return len(g.adjacency[id])
}

// Neighbors returns the adjacency map of a node: neighbor ID to edge weight.
// Callers must not modify the returned map.
func (g *Graph) Neighbors(id string) map[string]float64 {
	return g.adjacency[id]
}

// Building returns the building record stored on a node.
func (g *Graph) Building(id string) (model.Building, bool) {
	b, ok := g.buildings[id]
	return b, ok
}

// Nodes returns all node IDs in lexicographic order. The slice is shared
// and never mutated after construction; callers must not modify it.
func (g *Graph) Nodes() []string {
	return g.nodeIDs
}

// Edges returns every edge exactly once, ordered by (Source, Target).
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.numEdges)
	for _, a := range g.Nodes() {
		for b, w := range g.adjacency[a] {
			if a < b {
				edges = append(edges, Edge{Source: a, Target: b, DistanceM: w})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.buildings) }

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int { return g.numEdges }
