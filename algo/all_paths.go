package algo

// AllPaths performs a DFS bounded by maxDepth from s to t with no revisits
// within a single path, returning every simple path found.
func AllPaths(g GraphView, s, t uint64, maxDepth int) []*Path {
	var results []*Path
	visited := map[uint64]bool{s: true}
	var vertices []uint64
	var edges []uint64
	vertices = append(vertices, s)

	var dfs func(cur uint64, depth int)
	dfs = func(cur uint64, depth int) {
		if cur == t && len(vertices) > 1 {
			vCopy := append([]uint64(nil), vertices...)
			eCopy := append([]uint64(nil), edges...)
			results = append(results, &Path{Vertices: vCopy, Edges: eCopy, Weight: weightOf(g, eCopy)})
		}
		if depth >= maxDepth {
			return
		}
		for _, step := range neighborsOut(g, cur) {
			if visited[step.vertex] {
				continue
			}
			visited[step.vertex] = true
			vertices = append(vertices, step.vertex)
			edges = append(edges, step.edge)

			dfs(step.vertex, depth+1)

			vertices = vertices[:len(vertices)-1]
			edges = edges[:len(edges)-1]
			visited[step.vertex] = false
		}
	}
	dfs(s, 0)
	return results
}

func weightOf(g GraphView, edgeIDs []uint64) float64 {
	var total float64
	for _, eid := range edgeIDs {
		if e, err := g.Edge(eid); err == nil {
			total += float64(e.Weight())
		}
	}
	return total
}
