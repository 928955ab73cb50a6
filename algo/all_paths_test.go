package algo

import "testing"

func TestAllPathsFindsBothRoutes(t *testing.T) {
	g := newFakeGraph()
	for i := uint64(1); i <= 4; i++ {
		g.addVertex(i)
	}
	g.addEdge(100, 1, 4, 1) // direct
	g.addEdge(1, 1, 2, 1)
	g.addEdge(2, 2, 3, 1)
	g.addEdge(3, 3, 4, 1) // via 2, 3

	paths := AllPaths(g, 1, 4, 10)
	if len(paths) != 2 {
		t.Fatalf("expected 2 distinct paths, got %d", len(paths))
	}
}

func TestAllPathsRespectsMaxDepth(t *testing.T) {
	g := linearChain(6) // 1..6, 5 hops to reach 6
	if paths := AllPaths(g, 1, 6, 3); len(paths) != 0 {
		t.Fatalf("expected no paths within depth 3, got %d", len(paths))
	}
	if paths := AllPaths(g, 1, 6, 5); len(paths) != 1 {
		t.Fatalf("expected exactly one path within depth 5, got %d", len(paths))
	}
}

func TestAllPathsNoRevisits(t *testing.T) {
	g := newFakeGraph()
	g.addVertex(1)
	g.addVertex(2)
	g.addEdge(1, 1, 2, 1)
	g.addEdge(2, 2, 1, 1) // cycle back

	paths := AllPaths(g, 1, 2, 10)
	if len(paths) != 1 {
		t.Fatalf("expected exactly one simple path despite the cycle, got %d", len(paths))
	}
}
