package algo

import "testing"

func TestKShortestPathsOrdersByHopCount(t *testing.T) {
	g := newFakeGraph()
	for i := uint64(1); i <= 4; i++ {
		g.addVertex(i)
	}
	g.addEdge(100, 1, 4, 1) // 1 hop
	g.addEdge(1, 1, 2, 1)
	g.addEdge(2, 2, 3, 1)
	g.addEdge(3, 3, 4, 1) // 3 hops

	paths := KShortestPaths(g, 1, 4, 2, 10)
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if len(paths[0].Edges) != 1 {
		t.Fatalf("expected the 1-hop path first, got %d hops", len(paths[0].Edges))
	}
	if len(paths[1].Edges) != 3 {
		t.Fatalf("expected the 3-hop path second, got %d hops", len(paths[1].Edges))
	}
}

func TestKShortestPathsCapsAtK(t *testing.T) {
	g := newFakeGraph()
	g.addVertex(1)
	g.addVertex(2)
	// Three parallel direct edges, three distinct 1-hop "paths" by edge id.
	g.addEdge(1, 1, 2, 1)
	g.addEdge(2, 1, 2, 1)
	g.addEdge(3, 1, 2, 1)

	paths := KShortestPaths(g, 1, 2, 2, 5)
	if len(paths) != 2 {
		t.Fatalf("expected k=2 paths, got %d", len(paths))
	}
}
