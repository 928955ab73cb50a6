package gql

import (
	"strings"

	"chaingraphdb/algo"
	"chaingraphdb/core"
)

// execCall dispatches to the procedure catalog. Procedure
// names are case-insensitive; an unmatched name is a QueryError.
func (ex *Executor) execCall(stmt *Statement, params map[string]core.PropertyValue) (*QueryResult, error) {
	args := make([]core.PropertyValue, len(stmt.Args))
	for i, a := range stmt.Args {
		v, err := ex.evalExpr(a, Bindings{}, params)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	view := algo.NewGraphView(ex.Graph)

	switch strings.ToLower(stmt.ProcName) {
	case "shortest_path":
		if len(args) < 2 {
			return nil, core.NewError(core.KindQueryError, "shortest_path(src, dst) requires 2 arguments")
		}
		p := algo.ShortestPathWeighted(view, uintArg(args[0]), uintArg(args[1]))
		return pathProcedureResult(p), nil

	case "all_paths":
		if len(args) < 2 {
			return nil, core.NewError(core.KindQueryError, "all_paths(src, dst, max_depth?) requires at least 2 arguments")
		}
		maxDepth := 10
		if len(args) > 2 {
			maxDepth = int(uintArg(args[2]))
		}
		paths := algo.AllPaths(view, uintArg(args[0]), uintArg(args[1]), maxDepth)
		return pathListProcedureResult(paths), nil

	case "k_shortest_paths":
		if len(args) < 3 {
			return nil, core.NewError(core.KindQueryError, "k_shortest_paths(src, dst, k) requires 3 arguments")
		}
		paths := algo.KShortestPaths(view, uintArg(args[0]), uintArg(args[1]), int(uintArg(args[2])), 10)
		return pathListProcedureResult(paths), nil

	case "trace":
		if len(args) < 1 {
			return nil, core.NewError(core.KindQueryError, "trace(start, dir?, depth?) requires at least 1 argument")
		}
		dir := algo.TraceForward
		if len(args) > 1 {
			switch strings.ToLower(args[1].StringV) {
			case "backward":
				dir = algo.TraceBackward
			case "both":
				dir = algo.TraceBoth
			}
		}
		depth := 5
		if len(args) > 2 {
			depth = int(uintArg(args[2]))
		}
		paths := algo.Trace(view, uintArg(args[0]), dir, depth, nil)
		return pathListProcedureResult(paths), nil

	case "max_flow":
		if len(args) < 2 {
			return nil, core.NewError(core.KindQueryError, "max_flow(src, sink) requires 2 arguments")
		}
		result := algo.MaxFlow(view, uintArg(args[0]), uintArg(args[1]))
		return maxFlowProcedureResult(result), nil

	case "neighbors":
		if len(args) < 1 {
			return nil, core.NewError(core.KindQueryError, "neighbors(id, dir?) requires at least 1 argument")
		}
		return ex.neighborsProcedure(uintArg(args[0]), dirArg(args, 1)), nil

	case "degree":
		if len(args) < 1 {
			return nil, core.NewError(core.KindQueryError, "degree(id) requires 1 argument")
		}
		return ex.degreeProcedure(uintArg(args[0])), nil

	case "connected":
		if len(args) < 2 {
			return nil, core.NewError(core.KindQueryError, "connected(src, dst) requires 2 arguments")
		}
		s, t := uintArg(args[0]), uintArg(args[1])
		connected := algo.ShortestPath(view, s, t) != nil
		return &QueryResult{
			Columns: []string{"source", "target", "connected"},
			Rows: [][]ResultValue{{
				scalarResult(core.IntValue(int64(s))),
				scalarResult(core.IntValue(int64(t))),
				scalarResult(core.BoolValue(connected)),
			}},
		}, nil

	default:
		return nil, core.NewError(core.KindQueryError, "Unknown procedure")
	}
}

func uintArg(v core.PropertyValue) uint64 {
	switch v.Tag {
	case core.TagInteger:
		return uint64(v.IntV)
	case core.TagBlockNumber:
		return v.BlockNumV
	case core.TagFloat:
		return uint64(v.FloatV)
	default:
		return 0
	}
}

func dirArg(args []core.PropertyValue, idx int) string {
	if idx < len(args) && args[idx].Tag == core.TagString {
		return strings.ToLower(args[idx].StringV)
	}
	return "both"
}

func pathProcedureResult(p *algo.Path) *QueryResult {
	cols := []string{"path", "length", "total_weight"}
	if p == nil {
		return &QueryResult{Columns: cols}
	}
	row := []ResultValue{
		pathResult(pathDataFrom(p)),
		scalarResult(core.IntValue(int64(len(p.Edges)))),
		scalarResult(core.FloatValue(p.Weight)),
	}
	return &QueryResult{Columns: cols, Rows: [][]ResultValue{row}, Stats: QueryStats{RowsReturned: 1}}
}

func pathListProcedureResult(paths []*algo.Path) *QueryResult {
	cols := []string{"path", "length", "total_weight"}
	rows := make([][]ResultValue, 0, len(paths))
	for _, p := range paths {
		rows = append(rows, []ResultValue{
			pathResult(pathDataFrom(p)),
			scalarResult(core.IntValue(int64(len(p.Edges)))),
			scalarResult(core.FloatValue(p.Weight)),
		})
	}
	return &QueryResult{Columns: cols, Rows: rows, Stats: QueryStats{RowsReturned: len(rows)}}
}

// maxFlowProcedureResult emits one row per flow-carrying edge, with the
// total flow value carried in the first row.
func maxFlowProcedureResult(r *algo.MaxFlowResult) *QueryResult {
	cols := []string{"edge", "flow"}
	rows := make([][]ResultValue, 0, len(r.EdgeFlow)+1)
	rows = append(rows, []ResultValue{
		scalarResult(core.StringValue("TOTAL")),
		scalarResult(core.FloatValue(r.TotalFlow)),
	})
	for pair, flow := range r.EdgeFlow {
		label := core.StringValue(uitoa(pair[0]) + "->" + uitoa(pair[1]))
		rows = append(rows, []ResultValue{
			scalarResult(label),
			scalarResult(core.FloatValue(flow)),
		})
	}
	return &QueryResult{Columns: cols, Rows: rows, Stats: QueryStats{RowsReturned: len(rows)}}
}

func (ex *Executor) neighborsProcedure(id uint64, dir string) *QueryResult {
	eidx := ex.Graph.EdgeIndexView()
	cols := []string{"direction", "neighbor_id"}
	var rows [][]ResultValue
	add := func(label string, ids []uint64, from uint64, isSrc bool) {
		for _, eid := range ids {
			e, err := ex.Graph.Edge(eid)
			if err != nil {
				continue
			}
			neighbor := e.Dst
			if !isSrc {
				neighbor = e.Src
			}
			rows = append(rows, []ResultValue{
				scalarResult(core.StringValue(label)),
				scalarResult(core.IntValue(int64(neighbor))),
			})
		}
	}
	if dir == "out" || dir == "both" || dir == "forward" {
		add("out", eidx.Outgoing(id), id, true)
	}
	if dir == "in" || dir == "both" || dir == "backward" {
		add("in", eidx.Incoming(id), id, false)
	}
	return &QueryResult{Columns: cols, Rows: rows, Stats: QueryStats{RowsReturned: len(rows)}}
}

func (ex *Executor) degreeProcedure(id uint64) *QueryResult {
	eidx := ex.Graph.EdgeIndexView()
	out := len(eidx.Outgoing(id))
	in := len(eidx.Incoming(id))
	cols := []string{"vertex_id", "out", "in", "total"}
	row := []ResultValue{
		scalarResult(core.IntValue(int64(id))),
		scalarResult(core.IntValue(int64(out))),
		scalarResult(core.IntValue(int64(in))),
		scalarResult(core.IntValue(int64(out + in))),
	}
	return &QueryResult{Columns: cols, Rows: [][]ResultValue{row}, Stats: QueryStats{RowsReturned: 1}}
}
