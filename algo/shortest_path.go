package algo

// bfsPredecessor records how a vertex was first reached during a BFS.
type bfsPredecessor struct {
	prevEdge   uint64
	prevVertex uint64
}

// ShortestPath runs a breadth-first search on the directed graph from s to
// t, returning the first (hence shortest, by hop count) path found, or nil
// if t is unreachable from s.
func ShortestPath(g GraphView, s, t uint64) *Path {
	if s == t {
		return &Path{Vertices: []uint64{s}}
	}
	visited := map[uint64]bool{s: true}
	cameFrom := make(map[uint64]bfsPredecessor)
	queue := []uint64{s}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, step := range neighborsOut(g, cur) {
			if visited[step.vertex] {
				continue
			}
			visited[step.vertex] = true
			cameFrom[step.vertex] = bfsPredecessor{prevEdge: step.edge, prevVertex: cur}
			if step.vertex == t {
				return reconstructPath(cameFrom, s, t)
			}
			queue = append(queue, step.vertex)
		}
	}
	return nil
}

func reconstructPath(cameFrom map[uint64]bfsPredecessor, s, t uint64) *Path {
	var vertices []uint64
	var edges []uint64
	cur := t
	for cur != s {
		entry := cameFrom[cur]
		vertices = append([]uint64{cur}, vertices...)
		edges = append([]uint64{entry.prevEdge}, edges...)
		cur = entry.prevVertex
	}
	vertices = append([]uint64{s}, vertices...)
	return &Path{Vertices: vertices, Edges: edges}
}

// ShortestPathWeighted behaves like ShortestPath but also sums the
// Transfer weight of each traversed edge into the returned Path.
func ShortestPathWeighted(g GraphView, s, t uint64) *Path {
	p := ShortestPath(g, s, t)
	if p == nil {
		return nil
	}
	var total float64
	for _, eid := range p.Edges {
		if e, err := g.Edge(eid); err == nil {
			total += float64(e.Weight())
		}
	}
	p.Weight = total
	return p
}
