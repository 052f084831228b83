package graph

import "container/heap"

// pqItem is one entry in the Dijkstra priority queue.
type pqItem struct {
	id   string
	dist float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)         { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// ShortestDistances runs a single-source weighted Dijkstra search and returns
// the distance to every reachable node, the source included at distance 0.
// A non-negative cutoff bounds the search: nodes farther than cutoff are
// neither returned nor expanded, so the search stops early on large graphs.
// A negative cutoff disables the bound.
func (g *Graph) ShortestDistances(source string, cutoff float64) map[string]float64 {
	dist := make(map[string]float64)
	if !g.HasNode(source) {
		return dist
	}

	pq := priorityQueue{{id: source, dist: 0}}
	heap.Init(&pq)

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(pqItem)
		if _, done := dist[item.id]; done {
			continue
		}
		dist[item.id] = item.dist

		for neighbor, w := range g.adjacency[item.id] {
			if _, done := dist[neighbor]; done {
				continue
			}
			nd := item.dist + w
			if cutoff >= 0 && nd > cutoff {
				continue
			}
			heap.Push(&pq, pqItem{id: neighbor, dist: nd})
		}
	}
	return dist
}

// ShortestPath returns the minimum-weight path between two nodes as an
// ordered node sequence plus its total weight. ok is false when no path
// exists.
func (g *Graph) ShortestPath(source, target string) (path []string, length float64, ok bool) {
	if !g.HasNode(source) || !g.HasNode(target) {
		return nil, 0, false
	}
	if source == target {
		return []string{source}, 0, true
	}

	dist := make(map[string]float64)
	tentative := map[string]float64{source: 0}
	prev := make(map[string]string)
	pq := priorityQueue{{id: source, dist: 0}}
	heap.Init(&pq)

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(pqItem)
		if _, done := dist[item.id]; done {
			continue
		}
		dist[item.id] = item.dist
		if item.id == target {
			break
		}
		for neighbor, w := range g.adjacency[item.id] {
			if _, done := dist[neighbor]; done {
				continue
			}
			nd := item.dist + w
			if cur, seen := tentative[neighbor]; seen && cur <= nd {
				continue
			}
			tentative[neighbor] = nd
			prev[neighbor] = item.id
			heap.Push(&pq, pqItem{id: neighbor, dist: nd})
		}
	}

	length, ok = dist[target]
	if !ok {
		return nil, 0, false
	}
	for at := target; ; at = prev[at] {
		path = append(path, at)
		if at == source {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, length, true
}

// Components returns the connected components of the graph, each as a slice
// of node IDs. Components and their members follow the graph's node order,
// so output is deterministic.
func (g *Graph) Components() [][]string {
	visited := make(map[string]bool, len(g.buildings))
	var components [][]string

	for _, start := range g.Nodes() {
		if visited[start] {
			continue
		}
		var component []string
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			component = append(component, v)
			for neighbor := range g.adjacency[v] {
				if !visited[neighbor] {
					visited[neighbor] = true
					queue = append(queue, neighbor)
				}
			}
		}
		components = append(components, component)
	}
	return components
}
