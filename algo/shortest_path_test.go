package algo

import "testing"

func TestShortestPathSameVertex(t *testing.T) {
	g := linearChain(3)
	p := ShortestPath(g, 1, 1)
	if p == nil || len(p.Vertices) != 1 || p.Vertices[0] != 1 {
		t.Fatalf("expected a trivial single-vertex path, got %+v", p)
	}
}

func TestShortestPathFindsChain(t *testing.T) {
	g := linearChain(5)
	p := ShortestPath(g, 1, 5)
	if p == nil {
		t.Fatal("expected a path from 1 to 5")
	}
	want := []uint64{1, 2, 3, 4, 5}
	if len(p.Vertices) != len(want) {
		t.Fatalf("expected %d vertices, got %d: %v", len(want), len(p.Vertices), p.Vertices)
	}
	for i, v := range want {
		if p.Vertices[i] != v {
			t.Fatalf("vertex %d: want %d got %d", i, v, p.Vertices[i])
		}
	}
}

func TestShortestPathUnreachable(t *testing.T) {
	g := newFakeGraph()
	g.addVertex(1)
	g.addVertex(2)
	if p := ShortestPath(g, 1, 2); p != nil {
		t.Fatalf("expected no path between disconnected vertices, got %+v", p)
	}
}

func TestShortestPathPrefersFewerHops(t *testing.T) {
	g := newFakeGraph()
	for i := uint64(1); i <= 4; i++ {
		g.addVertex(i)
	}
	// 1 -> 4 directly, and the longer 1 -> 2 -> 3 -> 4.
	g.addEdge(100, 1, 4, 1)
	g.addEdge(1, 1, 2, 1)
	g.addEdge(2, 2, 3, 1)
	g.addEdge(3, 3, 4, 1)

	p := ShortestPath(g, 1, 4)
	if p == nil {
		t.Fatal("expected a path")
	}
	if len(p.Edges) != 1 {
		t.Fatalf("expected the 1-hop path to win, got %d hops: %v", len(p.Edges), p.Vertices)
	}
}

func TestShortestPathWeightedSumsAmounts(t *testing.T) {
	g := newFakeGraph()
	g.addVertex(1)
	g.addVertex(2)
	g.addVertex(3)
	g.addEdge(1, 1, 2, 10)
	g.addEdge(2, 2, 3, 20)

	p := ShortestPathWeighted(g, 1, 3)
	if p == nil {
		t.Fatal("expected a path")
	}
	if p.Weight != 30 {
		t.Fatalf("expected summed weight 30, got %v", p.Weight)
	}
}
