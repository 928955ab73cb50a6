package algo

// TraceDirection selects which adjacency Trace follows.
type TraceDirection uint8

const (
	TraceForward TraceDirection = iota
	TraceBackward
	TraceBoth
)

// Trace performs a DFS from start up to depth hops, emitting every path
// prefix beyond length 0, honoring an optional edge filter (a predicate on
// edge ids; nil follows every edge).
func Trace(g GraphView, start uint64, dir TraceDirection, depth int, edgeFilter func(edgeID uint64) bool) []*Path {
	var results []*Path
	visited := map[uint64]bool{start: true}
	vertices := []uint64{start}
	var edges []uint64

	var steps func(id uint64) []edgeStep
	switch dir {
	case TraceBackward:
		steps = func(id uint64) []edgeStep { return incomingSteps(g, id) }
	case TraceBoth:
		steps = func(id uint64) []edgeStep {
			return append(neighborsOut(g, id), incomingSteps(g, id)...)
		}
	default:
		steps = func(id uint64) []edgeStep { return neighborsOut(g, id) }
	}

	var dfs func(cur uint64, d int)
	dfs = func(cur uint64, d int) {
		if d >= depth {
			return
		}
		for _, step := range steps(cur) {
			if edgeFilter != nil && !edgeFilter(step.edge) {
				continue
			}
			if visited[step.vertex] {
				continue
			}
			visited[step.vertex] = true
			vertices = append(vertices, step.vertex)
			edges = append(edges, step.edge)

			vCopy := append([]uint64(nil), vertices...)
			eCopy := append([]uint64(nil), edges...)
			results = append(results, &Path{Vertices: vCopy, Edges: eCopy, Weight: weightOf(g, eCopy)})

			dfs(step.vertex, d+1)

			vertices = vertices[:len(vertices)-1]
			edges = edges[:len(edges)-1]
			visited[step.vertex] = false
		}
	}
	dfs(start, 0)
	return results
}

func incomingSteps(g GraphView, id uint64) []edgeStep {
	edges := g.Incoming(id)
	out := make([]edgeStep, 0, len(edges))
	for _, eid := range edges {
		e, err := g.Edge(eid)
		if err != nil {
			continue
		}
		out = append(out, edgeStep{vertex: e.Src, edge: eid, weight: float64(e.Weight())})
	}
	return out
}
