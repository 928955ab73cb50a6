package gql

import (
	"sort"

	"chaingraphdb/algo"
	"chaingraphdb/core"
)

// Executor runs parsed Statements against one open Graph, plus (optionally)
// the GraphCatalog the graph-scoped catalog statements (CREATE GRAPH / DROP
// GRAPH / USE / SHOW GRAPHS) operate on. A nil Catalog is valid: it simply
// disables those statement kinds, matching a bare-graph embedding use.
type Executor struct {
	Graph   *Graph
	Catalog *core.GraphCatalog
}

// Graph is an alias of core.Graph: the executor runs against a real
// page-backed graph, and its tests open one on disk.
type Graph = core.Graph

// NewExecutor builds an Executor bound to g with no catalog access.
func NewExecutor(g *Graph) *Executor {
	return &Executor{Graph: g}
}

// NewExecutorWithCatalog builds an Executor that can also serve
// CREATE GRAPH / DROP GRAPH / USE / SHOW GRAPHS.
func NewExecutorWithCatalog(g *Graph, cat *core.GraphCatalog) *Executor {
	return &Executor{Graph: g, Catalog: cat}
}

// Execute runs one parsed statement, dispatching on its Kind.
func (ex *Executor) Execute(stmt *Statement, params map[string]core.PropertyValue) (*QueryResult, error) {
	switch stmt.Kind {
	case StmtMatch:
		return ex.execMatch(stmt, params)
	case StmtInsert:
		return ex.execInsert(stmt, params)
	case StmtDelete:
		return ex.execDelete(stmt, params)
	case StmtSet:
		return ex.execSet(stmt, params)
	case StmtRemove:
		return ex.execRemove(stmt, params)
	case StmtCall:
		return ex.execCall(stmt, params)
	case StmtShow:
		return ex.execShow(stmt)
	case StmtCreateGraph:
		return ex.execCreateGraph(stmt)
	case StmtDropGraph:
		return ex.execDropGraph(stmt)
	case StmtUse:
		return ex.execUse(stmt)
	case StmtDescribe:
		return ex.execDescribe(stmt)
	default:
		return &QueryResult{Columns: []string{"keyword"}, Rows: [][]ResultValue{{scalarResult(core.StringValue(stmt.Keyword))}}}, nil
	}
}

// execMatch implements the pattern-matching evaluation algorithm.
func (ex *Executor) execMatch(stmt *Statement, params map[string]core.PropertyValue) (*QueryResult, error) {
	stats := QueryStats{}
	bindings := []Bindings{{}}

	for _, pp := range stmt.Pattern.Paths {
		var next []Bindings
		for _, b := range bindings {
			extended, err := ex.evalPathPattern(pp, b, &stats, params)
			if err != nil {
				if stmt.Optional {
					next = append(next, b)
					continue
				}
				return nil, err
			}
			next = append(next, extended...)
		}
		bindings = next
	}

	if stmt.Where.Kind != ExprNull || stmt.Where.BoolV {
		filtered := bindings[:0]
		for _, b := range bindings {
			ok, err := ex.evalExpr(stmt.Where, b, params)
			if err != nil {
				return nil, err
			}
			if truthy(ok) {
				filtered = append(filtered, b)
			}
		}
		bindings = filtered
	}

	if len(stmt.OrderBy) > 0 {
		sort.SliceStable(bindings, func(i, j int) bool {
			for _, item := range stmt.OrderBy {
				vi, _ := ex.evalExpr(item.Expr, bindings[i], params)
				vj, _ := ex.evalExpr(item.Expr, bindings[j], params)
				cmp := compareValues(vi, vj)
				if cmp != 0 {
					if item.Desc {
						return cmp > 0
					}
					return cmp < 0
				}
			}
			return false
		})
	}

	if stmt.Skip.Kind != ExprNull {
		n := evalIntLiteral(stmt.Skip, params)
		if n > 0 && n < len(bindings) {
			bindings = bindings[n:]
		} else if n >= len(bindings) {
			bindings = nil
		}
	}
	if stmt.Limit.Kind != ExprNull {
		n := evalIntLiteral(stmt.Limit, params)
		if n >= 0 && n < len(bindings) {
			bindings = bindings[:n]
		}
	}

	columns := make([]string, len(stmt.Return))
	rows := make([][]ResultValue, 0, len(bindings))
	for i, item := range stmt.Return {
		if item.Alias != "" {
			columns[i] = item.Alias
		} else {
			columns[i] = renderExprName(item.Expr)
		}
	}
	for _, b := range bindings {
		row := make([]ResultValue, len(stmt.Return))
		for i, item := range stmt.Return {
			row[i] = ex.projectExpr(item.Expr, b, params)
		}
		rows = append(rows, row)
	}
	stats.RowsReturned = len(rows)
	return &QueryResult{Columns: columns, Rows: rows, Stats: stats}, nil
}

func renderExprName(e Expression) string {
	switch e.Kind {
	case ExprVariable:
		return e.Variable
	case ExprProperty:
		return e.Variable + "." + e.Property
	case ExprFuncCall:
		return e.FuncName
	default:
		return "expr"
	}
}

// evalPathPattern extends one binding over a full PathPattern, dispatching
// to the path-search handler when a PathSearchPrefix is present.
func (ex *Executor) evalPathPattern(pp *PathPattern, b Bindings, stats *QueryStats, params map[string]core.PropertyValue) ([]Bindings, error) {
	if pp.Prefix != nil && pp.Prefix.Kind != PrefixNone {
		return ex.evalPathSearch(pp, b, stats, params)
	}
	if len(pp.Elements) == 0 {
		return []Bindings{b}, nil
	}
	mode := PathWalk
	if pp.Mode != nil {
		mode = *pp.Mode
	}

	current := []Bindings{b}
	first := pp.Elements[0]
	if first.Kind != ElementNode {
		return nil, core.NewError(core.KindQueryError, "a path pattern must start with a node")
	}
	current = ex.expandNode(first.Node, current, stats, params)

	for i := 1; i < len(pp.Elements); i += 2 {
		if i+1 >= len(pp.Elements) {
			return nil, core.NewError(core.KindQueryError, "path pattern ends on an edge with no following node")
		}
		edgeEl := pp.Elements[i]
		nodeEl := pp.Elements[i+1]
		var err error
		switch edgeEl.Kind {
		case ElementEdge:
			current, err = ex.expandEdgeStep(edgeEl.Edge, nodeEl.Node, mode, current, stats, params)
		case ElementParenPath:
			current, err = ex.expandSubPath(edgeEl, current, stats, params)
		default:
			return nil, core.NewError(core.KindQueryError, "expected an edge or parenthesized subpath")
		}
		if err != nil {
			return nil, err
		}
		if nodeEl.Kind == ElementNode {
			current = ex.expandNode(nodeEl.Node, current, stats, params)
		}
	}
	return current, nil
}

// expandNode filters the candidate vertex set by label/property/WHERE and
// extends every binding in cur with the node's variable (if bound).
func (ex *Executor) expandNode(np *NodePattern, cur []Bindings, stats *QueryStats, params map[string]core.PropertyValue) []Bindings {
	vidx := ex.Graph.VertexIndexView()
	candidates := candidateVertexIDs(vidx, np.Label)
	stats.VerticesScanned += len(candidates)

	var out []Bindings
	for _, b := range cur {
		if np.Variable != "" {
			if bound, ok := b[np.Variable]; ok && bound.Kind == BoundVertex {
				if ex.vertexMatches(bound.VertexID, np, b, params) {
					out = append(out, b)
				}
				continue
			}
		}
		for _, id := range candidates {
			if !ex.vertexMatches(id, np, b, params) {
				continue
			}
			nb := b.clone()
			if np.Variable != "" {
				nb[np.Variable] = BoundValue{Kind: BoundVertex, VertexID: id}
			}
			out = append(out, nb)
		}
	}
	return out
}

func candidateVertexIDs(vidx *core.VertexIndex, label *LabelExpression) []uint64 {
	if label != nil && label.Kind == LabelName {
		return vidx.IDsByLabel(core.VertexLabel(label.Name))
	}
	return vidx.AllIDs()
}

func (ex *Executor) vertexMatches(id uint64, np *NodePattern, b Bindings, params map[string]core.PropertyValue) bool {
	v, err := ex.Graph.Vertex(id)
	if err != nil {
		return false
	}
	if np.Label != nil && !matchVertexLabel(np.Label, v.Label) {
		return false
	}
	for key, expr := range np.Properties {
		pv, ok := v.Properties[key]
		if !ok {
			return false
		}
		want, _ := ex.evalExpr(expr, b, params)
		if !propertyValueEqual(pv, want) {
			return false
		}
	}
	if np.Where.Kind != ExprNull || np.Where.BoolV {
		nb := b.clone()
		if np.Variable != "" {
			nb[np.Variable] = BoundValue{Kind: BoundVertex, VertexID: id}
		}
		ok, _ := ex.evalExpr(np.Where, nb, params)
		if !truthy(ok) {
			return false
		}
	}
	return true
}

// matchVertexLabel implements the label-matching semantics.
// The data model stores one label per vertex, so a Conjunction across
// distinct labels is unsatisfiable by design.
func matchVertexLabel(expr *LabelExpression, label core.VertexLabel) bool {
	switch expr.Kind {
	case LabelName:
		return expr.Name == string(label)
	case LabelWildcard:
		return true
	case LabelNegation:
		return !matchVertexLabel(expr.Sub, label)
	case LabelConjunction:
		for _, op := range expr.Operands {
			if !matchVertexLabel(op, label) {
				return false
			}
		}
		return true
	case LabelDisjunction:
		for _, op := range expr.Operands {
			if matchVertexLabel(op, label) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func matchEdgeLabel(expr *LabelExpression, label core.EdgeLabel) bool {
	switch expr.Kind {
	case LabelName:
		return expr.Name == string(label)
	case LabelWildcard:
		return true
	case LabelNegation:
		return !matchEdgeLabel(expr.Sub, label)
	case LabelConjunction:
		for _, op := range expr.Operands {
			if !matchEdgeLabel(op, label) {
				return false
			}
		}
		return true
	case LabelDisjunction:
		for _, op := range expr.Operands {
			if matchEdgeLabel(op, label) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// expandEdgeStep handles an EdgePattern without a quantifier: enumerate
// incident edges in the pattern's direction, filter by label/properties,
// and extend.
func (ex *Executor) expandEdgeStep(ep *EdgePattern, targetNode *NodePattern, mode PathMode, cur []Bindings, stats *QueryStats, params map[string]core.PropertyValue) ([]Bindings, error) {
	if ep.Quantifier != nil {
		return ex.expandQuantifiedEdge(ep, targetNode, mode, cur, stats, params)
	}
	eidx := ex.Graph.EdgeIndexView()
	var out []Bindings
	for _, b := range cur {
		srcID, ok := lastVertexBinding(b, ep)
		if !ok {
			continue
		}
		for _, eid := range edgeCandidates(eidx, srcID, ep.Direction) {
			stats.EdgesScanned++
			e, err := ex.Graph.Edge(eid)
			if err != nil {
				continue
			}
			if ep.Label != nil && !matchEdgeLabel(ep.Label, e.Label) {
				continue
			}
			if !ex.edgePropsMatch(e, ep, b, params) {
				continue
			}
			dst := otherEndpoint(e, srcID)
			nb := b.clone()
			if ep.Variable != "" {
				nb[ep.Variable] = BoundValue{Kind: BoundEdge, EdgeID: eid}
			}
			if targetNode != nil && targetNode.Variable != "" {
				nb[targetNode.Variable] = BoundValue{Kind: BoundVertex, VertexID: dst}
			}
			out = append(out, nb)
		}
	}
	return out, nil
}

// lastVertexBinding finds the vertex id the edge pattern should fan out
// from: the most recently bound vertex in the current binding set. Since
// evalPathPattern always just bound the preceding node, that node's
// variable carries the current position; patterns with no variable on the
// node fall back to scanning all vertices (handled by the caller already
// having populated candidates), so here we require a known anchor.
func lastVertexBinding(b Bindings, ep *EdgePattern) (uint64, bool) {
	for _, bv := range b {
		if bv.Kind == BoundVertex {
			return bv.VertexID, true
		}
	}
	return 0, false
}

func edgeCandidates(eidx *core.EdgeIndex, v uint64, dir Direction) []uint64 {
	switch dir {
	case Outgoing:
		return eidx.Outgoing(v)
	case Incoming:
		return eidx.Incoming(v)
	default:
		return eidx.Incident(v)
	}
}

func otherEndpoint(e *core.Edge, from uint64) uint64 {
	if e.Src == from {
		return e.Dst
	}
	return e.Src
}

func (ex *Executor) edgePropsMatch(e *core.Edge, ep *EdgePattern, b Bindings, params map[string]core.PropertyValue) bool {
	for key, expr := range ep.Properties {
		pv, ok := e.Properties[key]
		if !ok {
			return false
		}
		want, _ := ex.evalExpr(expr, b, params)
		if !propertyValueEqual(pv, want) {
			return false
		}
	}
	if ep.Where.Kind != ExprNull || ep.Where.BoolV {
		nb := b.clone()
		if ep.Variable != "" {
			nb[ep.Variable] = BoundValue{Kind: BoundEdge, EdgeID: e.ID}
		}
		ok, _ := ex.evalExpr(ep.Where, nb, params)
		if !truthy(ok) {
			return false
		}
	}
	return true
}

// expandQuantifiedEdge performs variable-length edge expansion via
// BFS/DFS bounded by the pattern's quantifier.
func (ex *Executor) expandQuantifiedEdge(ep *EdgePattern, targetNode *NodePattern, mode PathMode, cur []Bindings, stats *QueryStats, params map[string]core.PropertyValue) ([]Bindings, error) {
	min, max := ep.Quantifier.Min, ep.Quantifier.Max
	if max < 0 {
		max = 64 // unbounded quantifiers are capped to a generous finite depth
	}
	var out []Bindings
	for _, b := range cur {
		srcID, ok := lastVertexBinding(b, ep)
		if !ok {
			continue
		}
		results := ex.quantifiedWalk(srcID, ep, targetNode, mode, min, max, stats, params)
		for _, r := range results {
			nb := b.clone()
			if targetNode != nil && targetNode.Variable != "" {
				nb[targetNode.Variable] = BoundValue{Kind: BoundVertex, VertexID: r.dst}
			}
			out = append(out, nb)
		}
	}
	return out, nil
}

type quantifiedResult struct {
	dst uint64
}

func (ex *Executor) quantifiedWalk(start uint64, ep *EdgePattern, targetNode *NodePattern, mode PathMode, min, max int, stats *QueryStats, params map[string]core.PropertyValue) []quantifiedResult {
	eidx := ex.Graph.EdgeIndexView()
	var results []quantifiedResult
	visitedVertices := map[uint64]bool{start: true}
	usedEdges := map[uint64]bool{}

	var dfs func(cur uint64, depth int)
	dfs = func(cur uint64, depth int) {
		if depth >= min {
			if targetNode == nil || (targetNode.Label == nil && len(targetNode.Properties) == 0) || ex.vertexMatches(cur, targetNode, Bindings{}, params) {
				results = append(results, quantifiedResult{dst: cur})
			}
		}
		if depth >= max {
			return
		}
		for _, eid := range edgeCandidates(eidx, cur, ep.Direction) {
			stats.EdgesScanned++
			if (mode == PathTrail || mode == PathSimple || mode == PathAcyclic) && usedEdges[eid] {
				continue
			}
			e, err := ex.Graph.Edge(eid)
			if err != nil {
				continue
			}
			if ep.Label != nil && !matchEdgeLabel(ep.Label, e.Label) {
				continue
			}
			dst := otherEndpoint(e, cur)
			if (mode == PathSimple || mode == PathAcyclic) && visitedVertices[dst] {
				continue
			}
			usedEdges[eid] = true
			visitedVertices[dst] = true
			dfs(dst, depth+1)
			visitedVertices[dst] = false
			usedEdges[eid] = false
		}
	}
	dfs(start, 0)
	return results
}

// expandSubPath evaluates a parenthesized nested PathPattern as one step,
// honoring its own PathMode before splicing its endpoint back into the
// outer binding set.
func (ex *Executor) expandSubPath(el PathElement, cur []Bindings, stats *QueryStats, params map[string]core.PropertyValue) ([]Bindings, error) {
	var out []Bindings
	for _, b := range cur {
		extended, err := ex.evalPathPattern(el.Sub, b, stats, params)
		if err != nil {
			return nil, err
		}
		out = append(out, extended...)
	}
	return out, nil
}

// evalPathSearch dispatches a PathSearchPrefix-bearing PathPattern to the
// algo package's path-search handlers.
func (ex *Executor) evalPathSearch(pp *PathPattern, b Bindings, stats *QueryStats, params map[string]core.PropertyValue) ([]Bindings, error) {
	if len(pp.Elements) < 2 {
		return nil, core.NewError(core.KindQueryError, "path search patterns require at least a source and target node")
	}
	srcNode := pp.Elements[0].Node
	dstNode := pp.Elements[len(pp.Elements)-1].Node
	srcCandidates := ex.expandNode(srcNode, []Bindings{b}, stats, params)
	view := algo.NewGraphView(ex.Graph)

	var out []Bindings
	for _, sb := range srcCandidates {
		srcBound, ok := sb[srcNode.Variable]
		if !ok || srcBound.Kind != BoundVertex {
			continue
		}
		dstCandidates := ex.expandNode(dstNode, []Bindings{sb}, stats, params)
		for _, db := range dstCandidates {
			dstBound, ok := db[dstNode.Variable]
			if !ok || dstBound.Kind != BoundVertex {
				continue
			}
			var paths []*algo.Path
			switch pp.Prefix.Kind {
			case PrefixAllShortest, PrefixAnyShortest:
				if p := algo.ShortestPathWeighted(view, srcBound.VertexID, dstBound.VertexID); p != nil {
					paths = append(paths, p)
				}
			case PrefixShortestK, PrefixShortestKGroups:
				k := pp.Prefix.K
				if k <= 0 {
					k = 1
				}
				paths = algo.KShortestPaths(view, srcBound.VertexID, dstBound.VertexID, k, 10)
			case PrefixAnyK:
				paths = algo.AllPaths(view, srcBound.VertexID, dstBound.VertexID, 10)
				if len(paths) > pp.Prefix.K && pp.Prefix.K > 0 {
					paths = paths[:pp.Prefix.K]
				}
			default:
				paths = algo.AllPaths(view, srcBound.VertexID, dstBound.VertexID, 10)
			}
			for _, p := range paths {
				nb := db.clone()
				if pp.Variable != "" {
					nb[pp.Variable] = BoundValue{Kind: BoundPath, Path: pathDataFrom(p)}
				}
				out = append(out, nb)
			}
		}
	}
	return out, nil
}

func pathDataFrom(p *algo.Path) *PathData {
	return &PathData{VertexIDs: p.Vertices, EdgeIDs: p.Edges, Length: len(p.Edges), Weight: p.Weight}
}
