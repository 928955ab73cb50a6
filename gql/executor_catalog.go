package gql

import (
	"strings"

	"chaingraphdb/core"
)

// execCreateGraph implements CREATE GRAPH name [IF NOT EXISTS].
func (ex *Executor) execCreateGraph(stmt *Statement) (*QueryResult, error) {
	if ex.Catalog == nil {
		return nil, core.NewError(core.KindQueryError, "no catalog attached to this executor")
	}
	_, err := ex.Catalog.Create(stmt.GraphName)
	if err != nil {
		if stmt.IfNotExists && core.IsAlreadyExists(err) {
			return &QueryResult{Columns: []string{"graph"}, Rows: [][]ResultValue{{scalarResult(core.StringValue(stmt.GraphName))}}}, nil
		}
		return nil, err
	}
	return &QueryResult{Columns: []string{"graph"}, Rows: [][]ResultValue{{scalarResult(core.StringValue(stmt.GraphName))}}}, nil
}

// execDropGraph implements DROP GRAPH name [IF EXISTS].
func (ex *Executor) execDropGraph(stmt *Statement) (*QueryResult, error) {
	if ex.Catalog == nil {
		return nil, core.NewError(core.KindQueryError, "no catalog attached to this executor")
	}
	if err := ex.Catalog.Drop(stmt.GraphName); err != nil {
		if stmt.IfExists && core.IsNotFound(err) {
			return &QueryResult{}, nil
		}
		return nil, err
	}
	return &QueryResult{}, nil
}

// execUse implements USE name: opens (if needed) and rebinds ex.Graph to
// the named graph, matching §4.6's Use statement.
func (ex *Executor) execUse(stmt *Statement) (*QueryResult, error) {
	if ex.Catalog == nil {
		return nil, core.NewError(core.KindQueryError, "no catalog attached to this executor")
	}
	g, err := ex.Catalog.Use(stmt.GraphName)
	if err != nil {
		return nil, err
	}
	ex.Graph = g
	return &QueryResult{Columns: []string{"graph"}, Rows: [][]ResultValue{{scalarResult(core.StringValue(stmt.GraphName))}}}, nil
}

// execDescribe reports a minimal summary of the current graph; the other
// Describe targets (GraphType/Schema/Label/EdgeType) beyond the graph
// itself describe schema concepts this embedded model keeps implicit
// (schema-flexible vertices/edges), so only Graph is meaningfully
// described here.
func (ex *Executor) execDescribe(stmt *Statement) (*QueryResult, error) {
	cols := []string{"name", "vertices", "edges"}
	row := []ResultValue{
		scalarResult(core.StringValue(stmt.GraphName)),
		scalarResult(core.IntValue(int64(ex.Graph.VertexCount()))),
		scalarResult(core.IntValue(int64(ex.Graph.EdgeCount()))),
	}
	return &QueryResult{Columns: cols, Rows: [][]ResultValue{row}}, nil
}

// execShow implements the SHOW catalog listing of spec.md §4.6. Only the
// targets meaningful to this embedded, schema-flexible model are
// populated; the rest return an empty result set rather than an error,
// since SHOW is a discovery aid, not a hard contract.
func (ex *Executor) execShow(stmt *Statement) (*QueryResult, error) {
	switch stmt.ShowTarget {
	case ShowGraphs:
		if ex.Catalog == nil {
			return &QueryResult{Columns: []string{"graph"}}, nil
		}
		names, err := ex.Catalog.List()
		if err != nil {
			return nil, err
		}
		rows := make([][]ResultValue, 0, len(names))
		for _, n := range names {
			if stmt.Like != "" && !likeMatch(n, stmt.Like) {
				continue
			}
			rows = append(rows, []ResultValue{scalarResult(core.StringValue(n))})
		}
		return &QueryResult{Columns: []string{"graph"}, Rows: rows}, nil

	case ShowLabels:
		rows := [][]ResultValue{}
		for name := range knownVertexLabels {
			rows = append(rows, []ResultValue{scalarResult(core.StringValue(name))})
		}
		return &QueryResult{Columns: []string{"label"}, Rows: rows}, nil

	case ShowEdgeTypes:
		rows := [][]ResultValue{}
		for name := range knownEdgeLabels {
			rows = append(rows, []ResultValue{scalarResult(core.StringValue(name))})
		}
		return &QueryResult{Columns: []string{"edge_type"}, Rows: rows}, nil

	case ShowProcedures:
		names := []string{"shortest_path", "all_paths", "k_shortest_paths", "trace", "max_flow", "neighbors", "degree", "connected"}
		rows := make([][]ResultValue, 0, len(names))
		for _, n := range names {
			rows = append(rows, []ResultValue{scalarResult(core.StringValue(n))})
		}
		return &QueryResult{Columns: []string{"procedure"}, Rows: rows}, nil

	case ShowFunctions:
		names := []string{"COUNT", "SUM", "AVG", "MIN", "MAX"}
		rows := make([][]ResultValue, 0, len(names))
		for _, n := range names {
			rows = append(rows, []ResultValue{scalarResult(core.StringValue(n))})
		}
		return &QueryResult{Columns: []string{"function"}, Rows: rows}, nil

	default:
		return &QueryResult{Columns: []string{"name"}}, nil
	}
}

// likeMatch implements SQL-style LIKE with a single trailing/leading `%`
// wildcard, the only form spec.md's SHOW ... LIKE needs.
func likeMatch(s, pattern string) bool {
	switch {
	case len(pattern) >= 2 && pattern[0] == '%' && pattern[len(pattern)-1] == '%':
		return strings.Contains(s, pattern[1:len(pattern)-1])
	case len(pattern) >= 1 && pattern[len(pattern)-1] == '%':
		return strings.HasPrefix(s, pattern[:len(pattern)-1])
	case len(pattern) >= 1 && pattern[0] == '%':
		return strings.HasSuffix(s, pattern[1:])
	default:
		return s == pattern
	}
}
