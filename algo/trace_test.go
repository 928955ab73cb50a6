package algo

import "testing"

func TestTraceForwardEmitsEveryPrefix(t *testing.T) {
	g := linearChain(4) // 1 -> 2 -> 3 -> 4

	paths := Trace(g, 1, TraceForward, 3, nil)
	if len(paths) != 3 {
		t.Fatalf("expected 3 prefixes (depth 1, 2, 3), got %d", len(paths))
	}
	last := paths[len(paths)-1]
	want := []uint64{1, 2, 3, 4}
	if len(last.Vertices) != len(want) {
		t.Fatalf("expected the deepest prefix to cover all 4 vertices, got %v", last.Vertices)
	}
	for i, v := range want {
		if last.Vertices[i] != v {
			t.Fatalf("vertex %d: want %d got %d", i, v, last.Vertices[i])
		}
	}
}

func TestTraceRespectsDepth(t *testing.T) {
	g := linearChain(5)
	paths := Trace(g, 1, TraceForward, 2, nil)
	for _, p := range paths {
		if len(p.Edges) > 2 {
			t.Fatalf("expected no prefix beyond depth 2, got %d edges", len(p.Edges))
		}
	}
}

func TestTraceBackwardFollowsIncomingEdges(t *testing.T) {
	g := linearChain(3) // 1 -> 2 -> 3

	paths := Trace(g, 3, TraceBackward, 2, nil)
	if len(paths) != 2 {
		t.Fatalf("expected 2 prefixes tracing backward from 3, got %d", len(paths))
	}
	last := paths[len(paths)-1]
	want := []uint64{3, 2, 1}
	for i, v := range want {
		if last.Vertices[i] != v {
			t.Fatalf("vertex %d: want %d got %d", i, v, last.Vertices[i])
		}
	}
}

func TestTraceBothFollowsInAndOut(t *testing.T) {
	g := newFakeGraph()
	g.addVertex(1)
	g.addVertex(2)
	g.addVertex(3)
	g.addEdge(1, 1, 2, 1) // 1 -> 2
	g.addEdge(2, 3, 1, 1) // 3 -> 1

	paths := Trace(g, 1, TraceBoth, 1, nil)
	if len(paths) != 2 {
		t.Fatalf("expected one forward and one backward prefix from 1, got %d", len(paths))
	}
	reached := map[uint64]bool{}
	for _, p := range paths {
		reached[p.Vertices[len(p.Vertices)-1]] = true
	}
	if !reached[2] || !reached[3] {
		t.Fatalf("expected to reach both neighbor 2 (outgoing) and 3 (incoming), got %v", paths)
	}
}

func TestTraceEdgeFilterExcludesEdges(t *testing.T) {
	g := newFakeGraph()
	g.addVertex(1)
	g.addVertex(2)
	g.addVertex(3)
	g.addEdge(1, 1, 2, 1)
	g.addEdge(2, 1, 3, 1)

	onlyEdgeTwo := func(edgeID uint64) bool { return edgeID == 2 }
	paths := Trace(g, 1, TraceForward, 1, onlyEdgeTwo)
	if len(paths) != 1 {
		t.Fatalf("expected exactly 1 prefix surviving the edge filter, got %d", len(paths))
	}
	if paths[0].Vertices[len(paths[0].Vertices)-1] != 3 {
		t.Fatalf("expected the filter to keep the edge leading to vertex 3, got %v", paths[0].Vertices)
	}
}

func TestTraceNoOutgoingEdgesYieldsNoPrefixes(t *testing.T) {
	g := newFakeGraph()
	g.addVertex(1)

	paths := Trace(g, 1, TraceForward, 5, nil)
	if len(paths) != 0 {
		t.Fatalf("expected no prefixes from an isolated vertex, got %d", len(paths))
	}
}
