package algo

// MaxFlowResult is the Edmonds-Karp output: total flow value, the flow
// assigned to each traversed (src,dst) pair, and the source-side vertices
// of the min cut.
type MaxFlowResult struct {
	TotalFlow   float64
	EdgeFlow    map[[2]uint64]float64
	MinCutSide  []uint64
}

// MaxFlow runs Edmonds-Karp on a residual graph built by summing Transfer
// edge weights (low-64-bit amount) per (src,dst) pair, augmenting along
// BFS paths until none remain.
func MaxFlow(g GraphView, s, t uint64) *MaxFlowResult {
	capacity := buildCapacityGraph(g, s)
	residual := make(map[uint64]map[uint64]float64, len(capacity))
	for u, edges := range capacity {
		residual[u] = make(map[uint64]float64, len(edges))
		for v, c := range edges {
			residual[u][v] += c
			if _, ok := residual[v]; !ok {
				residual[v] = make(map[uint64]float64)
			}
			if _, ok := residual[v][u]; !ok {
				residual[v][u] = 0
			}
		}
	}

	var total float64
	for {
		path, bottleneck := bfsAugmentingPath(residual, s, t)
		if path == nil {
			break
		}
		for i := 0; i < len(path)-1; i++ {
			u, v := path[i], path[i+1]
			residual[u][v] -= bottleneck
			residual[v][u] += bottleneck
		}
		total += bottleneck
	}

	edgeFlow := make(map[[2]uint64]float64)
	for u, edges := range capacity {
		for v, cap := range edges {
			used := cap - residual[u][v]
			if used > 0 {
				edgeFlow[[2]uint64{u, v}] = used
			}
		}
	}

	reachable := map[uint64]bool{s: true}
	queue := []uint64{s}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for v, c := range residual[cur] {
			if c > 0 && !reachable[v] {
				reachable[v] = true
				queue = append(queue, v)
			}
		}
	}
	minCut := make([]uint64, 0, len(reachable))
	for v := range reachable {
		minCut = append(minCut, v)
	}

	return &MaxFlowResult{TotalFlow: total, EdgeFlow: edgeFlow, MinCutSide: minCut}
}

// buildCapacityGraph sums parallel Transfer edge weights between the same
// (src,dst) pair into one residual-graph capacity. It walks forward from
// s only: any vertex relevant to an s->t augmenting path
// is reachable by following outgoing edges from s, so a full vertex-id scan
// isn't needed.
func buildCapacityGraph(g GraphView, s uint64) map[uint64]map[uint64]float64 {
	capacity := make(map[uint64]map[uint64]float64)
	seen := make(map[uint64]bool)

	var visit func(id uint64)
	visit = func(id uint64) {
		if seen[id] {
			return
		}
		seen[id] = true
		for _, step := range neighborsOut(g, id) {
			if _, ok := capacity[id]; !ok {
				capacity[id] = make(map[uint64]float64)
			}
			capacity[id][step.vertex] += step.weight
			visit(step.vertex)
		}
	}
	visit(s)
	return capacity
}

func bfsAugmentingPath(residual map[uint64]map[uint64]float64, s, t uint64) ([]uint64, float64) {
	visited := map[uint64]bool{s: true}
	prev := make(map[uint64]uint64)
	queue := []uint64{s}
	found := false

	for len(queue) > 0 && !found {
		cur := queue[0]
		queue = queue[1:]
		for v, c := range residual[cur] {
			if c > 1e-12 && !visited[v] {
				visited[v] = true
				prev[v] = cur
				if v == t {
					found = true
					break
				}
				queue = append(queue, v)
			}
		}
	}
	if !visited[t] {
		return nil, 0
	}

	var path []uint64
	cur := t
	for cur != s {
		path = append([]uint64{cur}, path...)
		cur = prev[cur]
	}
	path = append([]uint64{s}, path...)

	bottleneck := MaxBottleneck(residual, path)
	return path, bottleneck
}

// MaxBottleneck returns the minimum residual capacity along path.
func MaxBottleneck(residual map[uint64]map[uint64]float64, path []uint64) float64 {
	min := -1.0
	for i := 0; i < len(path)-1; i++ {
		c := residual[path[i]][path[i+1]]
		if min < 0 || c < min {
			min = c
		}
	}
	if min < 0 {
		return 0
	}
	return min
}
