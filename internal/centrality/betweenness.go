package centrality

import (
	"container/heap"
	"math/rand"

	"github.com/urbanfabric/buildnet/internal/graph"
)

// bcItem is one entry in the betweenness Dijkstra queue.
type bcItem struct {
	id   string
	dist float64
}

type bcQueue []bcItem

func (q bcQueue) Len() int           { return len(q) }
func (q bcQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q bcQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *bcQueue) Push(x any)        { *q = append(*q, x.(bcItem)) }
func (q *bcQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// betweenness computes weighted shortest-path betweenness centrality with the
// Dijkstra variant of Brandes' algorithm. For graphs larger than maxExact
// nodes it samples k = min(maxExact, N) pivot sources and rescales by N/k,
// keeping runtime bounded while staying edge-weight aware. Scores are
// normalized to [0,1] with the undirected factor 1/((N-1)(N-2)).
func betweenness(g *graph.Graph, maxExact int, rng *rand.Rand) map[string]float64 {
	nodes := g.Nodes()
	n := len(nodes)

	bc := make(map[string]float64, n)
	for _, id := range nodes {
		bc[id] = 0
	}
	if n <= 2 {
		return bc
	}

	sources := nodes
	if n > maxExact {
		sources = samplePivots(nodes, maxExact, rng)
	}

	for _, s := range sources {
		order, sigma, preds := brandesSearch(g, s)

		delta := make(map[string]float64, len(order))
		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				bc[w] += delta[w]
			}
		}
	}

	// Undirected accumulation visits each pair from both endpoints when all
	// sources are used, so the normalization already folds in the factor 2.
	scale := 1 / (float64(n-1) * float64(n-2))
	scale *= float64(n) / float64(len(sources))
	for id := range bc {
		bc[id] *= scale
	}
	return bc
}

// brandesSearch runs a single-source weighted Dijkstra that tracks shortest
// path counts (sigma) and shortest-path predecessors, returning nodes in
// order of finalization.
func brandesSearch(g *graph.Graph, source string) (order []string, sigma map[string]float64, preds map[string][]string) {
	sigma = map[string]float64{source: 1}
	preds = make(map[string][]string)
	finalized := make(map[string]float64)
	tentative := map[string]float64{source: 0}

	pq := bcQueue{{id: source, dist: 0}}
	heap.Init(&pq)

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(bcItem)
		if _, done := finalized[item.id]; done {
			continue
		}
		finalized[item.id] = item.dist
		order = append(order, item.id)

		for neighbor, w := range g.Neighbors(item.id) {
			if _, done := finalized[neighbor]; done {
				continue
			}
			nd := item.dist + w
			cur, seen := tentative[neighbor]
			switch {
			case !seen || nd < cur:
				tentative[neighbor] = nd
				sigma[neighbor] = sigma[item.id]
				preds[neighbor] = []string{item.id}
				heap.Push(&pq, bcItem{id: neighbor, dist: nd})
			case nd == cur:
				sigma[neighbor] += sigma[item.id]
				preds[neighbor] = append(preds[neighbor], item.id)
			}
		}
	}
	return order, sigma, preds
}

// samplePivots draws k distinct pivot sources uniformly at random.
func samplePivots(nodes []string, k int, rng *rand.Rand) []string {
	shuffled := make([]string, len(nodes))
	copy(shuffled, nodes)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:k]
}
