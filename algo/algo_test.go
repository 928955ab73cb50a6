package algo

import "chaingraphdb/core"

// fakeGraph is a minimal in-memory GraphView for exercising the algorithms
// without a real core.Graph, keyed to the view's contract (outgoing/
// incoming/edge/vertex lookups only).
type fakeGraph struct {
	outgoing map[uint64][]uint64 // vertex -> edge ids
	incoming map[uint64][]uint64
	edges    map[uint64]*core.Edge
	vertices map[uint64]*core.Vertex
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		outgoing: map[uint64][]uint64{},
		incoming: map[uint64][]uint64{},
		edges:    map[uint64]*core.Edge{},
		vertices: map[uint64]*core.Vertex{},
	}
}

func (f *fakeGraph) addVertex(id uint64) {
	f.vertices[id] = &core.Vertex{ID: id, Label: core.LabelAccount}
}

func (f *fakeGraph) addEdge(id, src, dst uint64, weight uint64) {
	props := map[string]core.PropertyValue{
		core.PropAmount: core.TokenAmountValue(core.TokenAmountFromUint64(weight)),
	}
	f.edges[id] = &core.Edge{ID: id, Label: core.LabelTransfer, Src: src, Dst: dst, Properties: props}
	f.outgoing[src] = append(f.outgoing[src], id)
	f.incoming[dst] = append(f.incoming[dst], id)
}

func (f *fakeGraph) Outgoing(id uint64) []uint64 { return f.outgoing[id] }
func (f *fakeGraph) Incoming(id uint64) []uint64 { return f.incoming[id] }

func (f *fakeGraph) Edge(id uint64) (*core.Edge, error) {
	if e, ok := f.edges[id]; ok {
		return e, nil
	}
	return nil, core.NewError(core.KindNotFound, "no such edge")
}

func (f *fakeGraph) Vertex(id uint64) (*core.Vertex, error) {
	if v, ok := f.vertices[id]; ok {
		return v, nil
	}
	return nil, core.NewError(core.KindNotFound, "no such vertex")
}

// linearChain builds 1 -> 2 -> 3 -> ... -> n, one edge per hop, edge id ==
// source vertex id, each edge weighted 1.
func linearChain(n int) *fakeGraph {
	g := newFakeGraph()
	for i := 1; i <= n; i++ {
		g.addVertex(uint64(i))
	}
	for i := 1; i < n; i++ {
		g.addEdge(uint64(i), uint64(i), uint64(i+1), 1)
	}
	return g
}
