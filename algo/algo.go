// Package algo implements the graph algorithms over a read-only view of
// a core.Graph: shortest path, bounded all-paths, simplified
// k-shortest-paths, prefix tracing, and Edmonds-Karp max-flow. Edge
// mirrors the shape of an AMM path-finding edge struct, kept as one
// algorithm per file.
package algo

import "chaingraphdb/core"

// GraphView is the minimal read-only surface algo needs from a core.Graph
// (outgoing/incoming edge ids plus edge and vertex lookup) so algorithms
// can be unit-tested against a fake.
type GraphView interface {
	Outgoing(id uint64) []uint64
	Incoming(id uint64) []uint64
	Edge(id uint64) (*core.Edge, error)
	Vertex(id uint64) (*core.Vertex, error)
}

// coreGraphView adapts *core.Graph to GraphView.
type coreGraphView struct{ g *core.Graph }

func NewGraphView(g *core.Graph) GraphView { return coreGraphView{g: g} }

func (v coreGraphView) Outgoing(id uint64) []uint64 { return v.g.EdgeIndexView().Outgoing(id) }
func (v coreGraphView) Incoming(id uint64) []uint64 { return v.g.EdgeIndexView().Incoming(id) }
func (v coreGraphView) Edge(id uint64) (*core.Edge, error)   { return v.g.Edge(id) }
func (v coreGraphView) Vertex(id uint64) (*core.Vertex, error) { return v.g.Vertex(id) }

// Path is a materialized sequence of vertex ids and the edges connecting
// them, plus the summed Transfer weight along the path.
type Path struct {
	Vertices []uint64
	Edges    []uint64
	Weight   float64
}

func (p *Path) length() int { return len(p.Edges) }

// neighborsOut returns (neighborVertexID, edgeID) pairs reachable by one
// outgoing edge from id.
func neighborsOut(g GraphView, id uint64) []edgeStep {
	edges := g.Outgoing(id)
	out := make([]edgeStep, 0, len(edges))
	for _, eid := range edges {
		e, err := g.Edge(eid)
		if err != nil {
			continue
		}
		out = append(out, edgeStep{vertex: e.Dst, edge: eid, weight: float64(e.Weight())})
	}
	return out
}

type edgeStep struct {
	vertex uint64
	edge   uint64
	weight float64
}
