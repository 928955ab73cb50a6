package gql

import (
	"chaingraphdb/core"
)

// execInsert implements Insert semantics: node patterns
// become fresh vertices (or dedupe onto an existing Account/Contract by
// address), and edge patterns pair the surrounding node variables into
// add_transfer (or a generic add_edge) calls.
func (ex *Executor) execInsert(stmt *Statement, params map[string]core.PropertyValue) (*QueryResult, error) {
	created := Bindings{}
	for _, pp := range stmt.InsertPattern.Paths {
		if err := ex.insertPath(pp, created, params); err != nil {
			return nil, err
		}
	}
	columns := make([]string, 0, len(created))
	row := make([]ResultValue, 0, len(created))
	for name, bv := range created {
		columns = append(columns, name)
		switch bv.Kind {
		case BoundVertex:
			if v, err := ex.Graph.Vertex(bv.VertexID); err == nil {
				row = append(row, vertexResult(v))
			}
		case BoundEdge:
			if e, err := ex.Graph.Edge(bv.EdgeID); err == nil {
				row = append(row, edgeResult(e))
			}
		}
	}
	return &QueryResult{Columns: columns, Rows: [][]ResultValue{row}, Stats: QueryStats{RowsReturned: 1}}, nil
}

func (ex *Executor) insertPath(pp *PathPattern, created Bindings, params map[string]core.PropertyValue) error {
	for i, el := range pp.Elements {
		switch el.Kind {
		case ElementNode:
			if err := ex.insertNode(el.Node, created, params); err != nil {
				return err
			}
		case ElementEdge:
			if i == 0 || i+1 >= len(pp.Elements) {
				return core.NewError(core.KindQueryError, "an edge pattern in INSERT must have a node on both sides")
			}
			srcVar := pp.Elements[i-1].Node.Variable
			dstVar := pp.Elements[i+1].Node.Variable
			if err := ex.insertEdge(el.Edge, created, srcVar, dstVar, params); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ex *Executor) insertNode(np *NodePattern, created Bindings, params map[string]core.PropertyValue) error {
	if np.Variable != "" {
		if _, ok := created[np.Variable]; ok {
			return nil
		}
	}
	props := make(map[string]core.PropertyValue, len(np.Properties))
	for k, expr := range np.Properties {
		v, err := ex.evalExpr(expr, Bindings{}, params)
		if err != nil {
			return err
		}
		props[k] = v
	}

	label := ""
	if np.Label != nil && np.Label.Kind == LabelName {
		label = np.Label.Name
	}

	addr, hasAddr := propertyAsAddress(props["address"])
	if hasAddr && knownVertexLabels[label] {
		delete(props, "address")
		var v *core.Vertex
		var err error
		if label == string(core.LabelContract) {
			deployer, _ := propertyAsAddress(props["deployer"])
			delete(props, "deployer")
			if existing, ferr := ex.Graph.VertexByAddress(addr); ferr == nil {
				v = existing
			} else {
				v, err = ex.Graph.AddContract(addr, deployer, props)
			}
		} else {
			if existing, ferr := ex.Graph.VertexByAddress(addr); ferr == nil {
				v = existing
			} else {
				v, err = ex.Graph.AddAccount(addr, props)
			}
		}
		if err != nil {
			return err
		}
		if np.Variable != "" {
			created[np.Variable] = BoundValue{Kind: BoundVertex, VertexID: v.ID}
		}
		return nil
	}

	vlabel := core.VertexLabel(label)
	if vlabel == "" {
		vlabel = core.LabelAccount
	}
	v, err := ex.Graph.AddVertex(vlabel, props)
	if err != nil {
		return err
	}
	if np.Variable != "" {
		created[np.Variable] = BoundValue{Kind: BoundVertex, VertexID: v.ID}
	}
	return nil
}

func (ex *Executor) insertEdge(ep *EdgePattern, created Bindings, srcVar, dstVar string, params map[string]core.PropertyValue) error {
	srcBV, ok := created[srcVar]
	if !ok || srcBV.Kind != BoundVertex {
		return core.NewError(core.KindQueryError, "edge source node was not inserted")
	}
	dstBV, ok := created[dstVar]
	if !ok || dstBV.Kind != BoundVertex {
		return core.NewError(core.KindQueryError, "edge destination node was not inserted")
	}

	props := make(map[string]core.PropertyValue, len(ep.Properties))
	for k, expr := range ep.Properties {
		v, err := ex.evalExpr(expr, Bindings{}, params)
		if err != nil {
			return err
		}
		props[k] = v
	}

	label := string(core.LabelTransfer)
	if ep.Label != nil && ep.Label.Kind == LabelName {
		label = ep.Label.Name
	}

	if label == string(core.LabelTransfer) {
		amount := extractTokenAmount(props, "amount", "value")
		block := extractUint64(props, "block", "block_number")
		var txHash core.Hash
		if h, ok := props[core.PropTxHash]; ok {
			switch h.Tag {
			case core.TagTxHash:
				txHash = h.HashV
			case core.TagString:
				if parsed, err := core.ParseHash(h.StringV); err == nil {
					txHash = parsed
				}
			}
		}
		e, err := ex.Graph.AddTransfer(srcBV.VertexID, dstBV.VertexID, amount, block, txHash)
		if err != nil {
			return err
		}
		if ep.Variable != "" {
			created[ep.Variable] = BoundValue{Kind: BoundEdge, EdgeID: e.ID}
		}
		return nil
	}

	e, err := ex.Graph.AddEdge(core.EdgeLabel(label), srcBV.VertexID, dstBV.VertexID, props)
	if err != nil {
		return err
	}
	if ep.Variable != "" {
		created[ep.Variable] = BoundValue{Kind: BoundEdge, EdgeID: e.ID}
	}
	return nil
}

// propertyAsAddress accepts either a native TagAddress value or a hex
// string literal, since the GQL surface has no dedicated address literal
// syntax: `address: "0xabc..."` is how INSERT patterns spell it.
func propertyAsAddress(v core.PropertyValue) (core.Address, bool) {
	switch v.Tag {
	case core.TagAddress:
		return v.AddressV, true
	case core.TagString:
		a, err := core.ParseAddress(v.StringV)
		if err != nil {
			return core.Address{}, false
		}
		return a, true
	default:
		return core.Address{}, false
	}
}

func extractTokenAmount(props map[string]core.PropertyValue, keys ...string) core.TokenAmount {
	for _, k := range keys {
		if v, ok := props[k]; ok {
			switch v.Tag {
			case core.TagTokenAmount:
				return v.AmountV
			case core.TagInteger:
				return core.TokenAmountFromUint64(uint64(v.IntV))
			}
		}
	}
	return core.TokenAmountFromUint64(0)
}

func extractUint64(props map[string]core.PropertyValue, keys ...string) uint64 {
	for _, k := range keys {
		if v, ok := props[k]; ok {
			switch v.Tag {
			case core.TagBlockNumber:
				return v.BlockNumV
			case core.TagInteger:
				return uint64(v.IntV)
			}
		}
	}
	return 0
}

// execDelete implements DELETE [DETACH] var, ...: each target that parses
// as a numeric id (parseVarAsID) is deleted as a vertex, and other names
// are skipped. DeleteVertex always removes the vertex's incident edges, so
// DETACH makes no difference; edges are not deleted by id.
func (ex *Executor) execDelete(stmt *Statement, params map[string]core.PropertyValue) (*QueryResult, error) {
	for _, name := range stmt.DeleteVars {
		id, err := parseVarAsID(name)
		if err != nil {
			continue
		}
		if err := ex.Graph.DeleteVertex(id); err != nil {
			return nil, err
		}
	}
	return &QueryResult{Columns: nil, Rows: nil}, nil
}

// parseVarAsID is a placeholder resolution strategy: DELETE targets named
// in a standalone statement (not chained after a MATCH in this executor)
// are expected to already be numeric ids, since there is no carried-over
// binding set across statements.
func parseVarAsID(name string) (uint64, error) {
	var id uint64
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, core.NewError(core.KindQueryError, "DELETE target must be a vertex id: "+name)
		}
		id = id*10 + uint64(c-'0')
	}
	if id == 0 && name != "0" {
		return 0, core.NewError(core.KindQueryError, "DELETE target must be a vertex id: "+name)
	}
	return id, nil
}

// execSet implements SET v.prop = expr, evaluated against an empty binding
// set (standalone statement semantics, matching execDelete).
func (ex *Executor) execSet(stmt *Statement, params map[string]core.PropertyValue) (*QueryResult, error) {
	for _, item := range stmt.SetItems {
		id, err := parseVarAsID(item.Variable)
		if err != nil {
			return nil, err
		}
		v, err := ex.evalExpr(item.Value, Bindings{}, params)
		if err != nil {
			return nil, err
		}
		if err := ex.Graph.UpdateVertex(id, map[string]core.PropertyValue{item.Property: v}); err != nil {
			return nil, err
		}
	}
	return &QueryResult{Columns: nil, Rows: nil}, nil
}

// execRemove implements REMOVE v.prop, deleting the named property by
// overwriting it with Null (the core has no property-deletion primitive;
// Null is the closed union's empty marker).
func (ex *Executor) execRemove(stmt *Statement, params map[string]core.PropertyValue) (*QueryResult, error) {
	for _, item := range stmt.RemoveItems {
		id, err := parseVarAsID(item.Variable)
		if err != nil {
			return nil, err
		}
		if err := ex.Graph.UpdateVertex(id, map[string]core.PropertyValue{item.Property: core.NullValue()}); err != nil {
			return nil, err
		}
	}
	return &QueryResult{Columns: nil, Rows: nil}, nil
}
