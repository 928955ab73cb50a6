package gql

import "chaingraphdb/core"

// ResultValueKind discriminates ResultValue.
type ResultValueKind uint8

const (
	ResultVertex ResultValueKind = iota
	ResultEdge
	ResultPath
	ResultScalar
	ResultNull
)

// PathData is a materialized path: its vertex ids in order, the ids of
// the edges between them, the hop count and the summed weight, used both for RETURNed path
// expressions and algo procedure results.
type PathData struct {
	VertexIDs []uint64
	EdgeIDs   []uint64
	Length    int
	Weight    float64
}

// ResultValue is one cell of a QueryResult row.
type ResultValue struct {
	Kind    ResultValueKind
	Vertex  *core.Vertex
	Edge    *core.Edge
	Path    *PathData
	Scalar  core.PropertyValue
}

func scalarResult(v core.PropertyValue) ResultValue { return ResultValue{Kind: ResultScalar, Scalar: v} }
func vertexResult(v *core.Vertex) ResultValue        { return ResultValue{Kind: ResultVertex, Vertex: v} }
func edgeResult(e *core.Edge) ResultValue            { return ResultValue{Kind: ResultEdge, Edge: e} }
func pathResult(p *PathData) ResultValue             { return ResultValue{Kind: ResultPath, Path: p} }
func nullResult() ResultValue                        { return ResultValue{Kind: ResultNull} }

// String renders a ResultValue for table/CLI display.
func (r ResultValue) String() string {
	switch r.Kind {
	case ResultVertex:
		return string(r.Vertex.Label) + "#" + uitoa(r.Vertex.ID)
	case ResultEdge:
		return string(r.Edge.Label) + "#" + uitoa(r.Edge.ID)
	case ResultPath:
		return pathString(r.Path)
	case ResultScalar:
		return r.Scalar.String()
	default:
		return "null"
	}
}

func pathString(p *PathData) string {
	s := ""
	for i, v := range p.VertexIDs {
		if i > 0 {
			s += "-"
		}
		s += uitoa(v)
	}
	return s
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// QueryStats reports executor-observed counters for one query.
type QueryStats struct {
	VerticesScanned int
	EdgesScanned    int
	RowsReturned    int
}

// QueryResult is the full output of executing one Statement.
type QueryResult struct {
	Columns []string
	Rows    [][]ResultValue
	Stats   QueryStats
}

// Bindings maps a pattern variable to its bound value during MATCH
// evaluation: a single vertex id, a single edge id, a path, or a scalar.
type Bindings map[string]BoundValue

// BoundValueKind discriminates BoundValue.
type BoundValueKind uint8

const (
	BoundVertex BoundValueKind = iota
	BoundEdge
	BoundPath
	BoundScalar
	BoundVertexList
)

type BoundValue struct {
	Kind       BoundValueKind
	VertexID   uint64
	EdgeID     uint64
	Path       *PathData
	Scalar     core.PropertyValue
	VertexList []uint64
}

func (b Bindings) clone() Bindings {
	out := make(Bindings, len(b)+2)
	for k, v := range b {
		out[k] = v
	}
	return out
}
