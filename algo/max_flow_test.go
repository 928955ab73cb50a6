package algo

import "testing"

func TestMaxFlowSumsParallelAndBottlenecks(t *testing.T) {
	g := newFakeGraph()
	for i := uint64(1); i <= 4; i++ {
		g.addVertex(i)
	}
	g.addEdge(1, 1, 2, 10)
	g.addEdge(2, 1, 3, 5)
	g.addEdge(3, 2, 4, 5)
	g.addEdge(4, 3, 4, 10)

	res := MaxFlow(g, 1, 4)
	if res.TotalFlow != 10 {
		t.Fatalf("expected total flow 10, got %v", res.TotalFlow)
	}
}

func TestMaxFlowSingleBottleneckEdge(t *testing.T) {
	g := newFakeGraph()
	for i := uint64(1); i <= 4; i++ {
		g.addVertex(i)
	}
	g.addEdge(1, 1, 2, 100)
	g.addEdge(2, 2, 3, 1)
	g.addEdge(3, 3, 4, 100)

	res := MaxFlow(g, 1, 4)
	if res.TotalFlow != 1 {
		t.Fatalf("expected total flow capped at the 1-capacity bottleneck, got %v", res.TotalFlow)
	}
}

func TestMaxFlowParallelEdgesSumCapacity(t *testing.T) {
	g := newFakeGraph()
	g.addVertex(1)
	g.addVertex(2)
	g.addEdge(1, 1, 2, 4)
	g.addEdge(2, 1, 2, 6) // parallel edge, same pair, summed capacity 10

	res := MaxFlow(g, 1, 2)
	if res.TotalFlow != 10 {
		t.Fatalf("expected parallel edge capacities to sum to 10, got %v", res.TotalFlow)
	}
}

func TestMaxFlowNoPathIsZero(t *testing.T) {
	g := newFakeGraph()
	g.addVertex(1)
	g.addVertex(2)

	res := MaxFlow(g, 1, 2)
	if res.TotalFlow != 0 {
		t.Fatalf("expected zero flow with no connecting edge, got %v", res.TotalFlow)
	}
}

func TestMaxFlowMinCutContainsSource(t *testing.T) {
	g := newFakeGraph()
	for i := uint64(1); i <= 3; i++ {
		g.addVertex(i)
	}
	g.addEdge(1, 1, 2, 5)
	g.addEdge(2, 2, 3, 5)

	res := MaxFlow(g, 1, 3)
	found := false
	for _, v := range res.MinCutSide {
		if v == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the min-cut source side to contain the source vertex, got %v", res.MinCutSide)
	}
}
