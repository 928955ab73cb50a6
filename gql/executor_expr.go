package gql

import (
	"strings"

	"chaingraphdb/core"
)

// evalExpr evaluates an Expression against a binding set and query
// parameters, implementing the expression evaluation rules:
// short-circuit AND/OR, simplified two-valued logic (Null is falsy),
// Integer/Float cross-casting in comparisons, and the string predicates.
func (ex *Executor) evalExpr(e Expression, b Bindings, params map[string]core.PropertyValue) (core.PropertyValue, error) {
	switch e.Kind {
	case ExprNull:
		return core.NullValue(), nil
	case ExprBool:
		return core.BoolValue(e.BoolV), nil
	case ExprInt:
		return core.IntValue(e.IntV), nil
	case ExprFloat:
		return core.FloatValue(e.FloatV), nil
	case ExprString:
		return core.StringValue(e.StringV), nil
	case ExprParam:
		if v, ok := params[e.ParamName]; ok {
			return v, nil
		}
		return core.NullValue(), nil
	case ExprVariable:
		return ex.resolveVariable(e.Variable, b), nil
	case ExprProperty:
		return ex.resolveProperty(e.Variable, e.Property, b), nil
	case ExprList:
		items := make([]core.PropertyValue, len(e.ListV))
		for i, sub := range e.ListV {
			v, err := ex.evalExpr(sub, b, params)
			if err != nil {
				return core.NullValue(), err
			}
			items[i] = v
		}
		return core.ListValue(items), nil
	case ExprMap:
		m := make(map[string]core.PropertyValue, len(e.MapV))
		for k, sub := range e.MapV {
			v, err := ex.evalExpr(sub, b, params)
			if err != nil {
				return core.NullValue(), err
			}
			m[k] = v
		}
		return core.MapValue(m), nil
	case ExprUnary:
		return ex.evalUnary(e, b, params)
	case ExprBinary:
		return ex.evalBinary(e, b, params)
	case ExprFuncCall:
		return ex.evalFuncCall(e, b, params)
	case ExprCase:
		return ex.evalCase(e, b, params)
	case ExprExists:
		return ex.evalExists(e, b, params)
	case ExprQuantified:
		return ex.evalQuantified(e, b, params)
	default:
		return core.NullValue(), nil
	}
}

func (ex *Executor) resolveVariable(name string, b Bindings) core.PropertyValue {
	bv, ok := b[name]
	if !ok {
		return core.NullValue()
	}
	switch bv.Kind {
	case BoundScalar:
		return bv.Scalar
	default:
		return core.NullValue()
	}
}

func (ex *Executor) resolveProperty(varName, prop string, b Bindings) core.PropertyValue {
	bv, ok := b[varName]
	if !ok {
		return core.NullValue()
	}
	switch bv.Kind {
	case BoundVertex:
		v, err := ex.Graph.Vertex(bv.VertexID)
		if err != nil {
			return core.NullValue()
		}
		if prop == "id" {
			return core.IntValue(int64(v.ID))
		}
		if prop == "label" {
			return core.StringValue(string(v.Label))
		}
		if pv, ok := v.Properties[prop]; ok {
			return pv
		}
		return core.NullValue()
	case BoundEdge:
		e, err := ex.Graph.Edge(bv.EdgeID)
		if err != nil {
			return core.NullValue()
		}
		switch prop {
		case "id":
			return core.IntValue(int64(e.ID))
		case "label":
			return core.StringValue(string(e.Label))
		case "src":
			return core.IntValue(int64(e.Src))
		case "dst":
			return core.IntValue(int64(e.Dst))
		}
		if pv, ok := e.Properties[prop]; ok {
			return pv
		}
		return core.NullValue()
	case BoundPath:
		switch prop {
		case "length":
			return core.IntValue(int64(bv.Path.Length))
		case "weight":
			return core.FloatValue(bv.Path.Weight)
		}
		return core.NullValue()
	default:
		return core.NullValue()
	}
}

func (ex *Executor) evalUnary(e Expression, b Bindings, params map[string]core.PropertyValue) (core.PropertyValue, error) {
	v, err := ex.evalExpr(*e.Left, b, params)
	if err != nil {
		return core.NullValue(), err
	}
	switch e.Op {
	case "-":
		if v.Tag == core.TagFloat {
			return core.FloatValue(-v.FloatV), nil
		}
		return core.IntValue(-v.IntV), nil
	case "NOT":
		return core.BoolValue(!truthy(v)), nil
	case "IS NULL":
		return core.BoolValue(v.Tag == core.TagNull), nil
	case "IS NOT NULL":
		return core.BoolValue(v.Tag != core.TagNull), nil
	default:
		return core.NullValue(), nil
	}
}

func (ex *Executor) evalBinary(e Expression, b Bindings, params map[string]core.PropertyValue) (core.PropertyValue, error) {
	switch e.Op {
	case "AND":
		l, err := ex.evalExpr(*e.Left, b, params)
		if err != nil || !truthy(l) {
			return core.BoolValue(false), err
		}
		r, err := ex.evalExpr(*e.Right, b, params)
		return core.BoolValue(truthy(r)), err
	case "OR":
		l, err := ex.evalExpr(*e.Left, b, params)
		if err != nil {
			return core.NullValue(), err
		}
		if truthy(l) {
			return core.BoolValue(true), nil
		}
		r, err := ex.evalExpr(*e.Right, b, params)
		return core.BoolValue(truthy(r)), err
	}

	left, err := ex.evalExpr(*e.Left, b, params)
	if err != nil {
		return core.NullValue(), err
	}
	right, err := ex.evalExpr(*e.Right, b, params)
	if err != nil {
		return core.NullValue(), err
	}

	switch e.Op {
	case "=":
		return core.BoolValue(propertyValueEqual(left, right)), nil
	case "<>", "!=":
		return core.BoolValue(!propertyValueEqual(left, right)), nil
	case "<", "<=", ">", ">=":
		return core.BoolValue(compareOp(left, right, e.Op)), nil
	case "+", "-", "*", "/", "%":
		return arithOp(left, right, e.Op), nil
	case "CONTAINS":
		return core.BoolValue(strings.Contains(left.StringV, right.StringV)), nil
	case "STARTS WITH":
		return core.BoolValue(strings.HasPrefix(left.StringV, right.StringV)), nil
	case "ENDS WITH":
		return core.BoolValue(strings.HasSuffix(left.StringV, right.StringV)), nil
	default:
		return core.NullValue(), nil
	}
}

// truthy implements a simplified two-valued logic: Null
// and the empty string are falsy.
func truthy(v core.PropertyValue) bool {
	switch v.Tag {
	case core.TagNull:
		return false
	case core.TagBool:
		return v.BoolV
	case core.TagString:
		return v.StringV != ""
	case core.TagInteger:
		return v.IntV != 0
	case core.TagFloat:
		return v.FloatV != 0
	default:
		return true
	}
}

func asFloat(v core.PropertyValue) (float64, bool) {
	switch v.Tag {
	case core.TagInteger:
		return float64(v.IntV), true
	case core.TagFloat:
		return v.FloatV, true
	case core.TagBlockNumber:
		return float64(v.BlockNumV), true
	default:
		return 0, false
	}
}

// compareOp casts Integer/Float operands to Float;
// mismatched non-numeric types are never "less than" one another.
func compareOp(l, r core.PropertyValue, op string) bool {
	lf, lok := asFloat(l)
	rf, rok := asFloat(r)
	if lok && rok {
		switch op {
		case "<":
			return lf < rf
		case "<=":
			return lf <= rf
		case ">":
			return lf > rf
		case ">=":
			return lf >= rf
		}
		return false
	}
	if l.Tag == core.TagString && r.Tag == core.TagString {
		switch op {
		case "<":
			return l.StringV < r.StringV
		case "<=":
			return l.StringV <= r.StringV
		case ">":
			return l.StringV > r.StringV
		case ">=":
			return l.StringV >= r.StringV
		}
	}
	return false
}

func arithOp(l, r core.PropertyValue, op string) core.PropertyValue {
	lf, lok := asFloat(l)
	rf, rok := asFloat(r)
	if !lok || !rok {
		return core.NullValue()
	}
	if l.Tag == core.TagFloat || r.Tag == core.TagFloat {
		switch op {
		case "+":
			return core.FloatValue(lf + rf)
		case "-":
			return core.FloatValue(lf - rf)
		case "*":
			return core.FloatValue(lf * rf)
		case "/":
			if rf == 0 {
				return core.NullValue()
			}
			return core.FloatValue(lf / rf)
		case "%":
			return core.NullValue()
		}
	}
	li, ri := l.IntV, r.IntV
	switch op {
	case "+":
		return core.IntValue(li + ri)
	case "-":
		return core.IntValue(li - ri)
	case "*":
		return core.IntValue(li * ri)
	case "/":
		if ri == 0 {
			return core.NullValue()
		}
		return core.IntValue(li / ri)
	case "%":
		if ri == 0 {
			return core.NullValue()
		}
		return core.IntValue(li % ri)
	}
	return core.NullValue()
}

// propertyValueEqual compares two property values, casting Integer/Float
// pairs to Float the same way comparisons do.
func propertyValueEqual(a, b core.PropertyValue) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case core.TagNull:
		return true
	case core.TagBool:
		return a.BoolV == b.BoolV
	case core.TagString:
		return a.StringV == b.StringV
	case core.TagAddress:
		return a.AddressV == b.AddressV
	case core.TagTxHash:
		return a.HashV == b.HashV
	case core.TagTokenAmount:
		return a.AmountV.String() == b.AmountV.String()
	case core.TagTimestamp:
		return a.TimeV == b.TimeV
	default:
		return a.String() == b.String()
	}
}

// compareValues orders two PropertyValues for ORDER BY; Null sorts first.
func compareValues(a, b core.PropertyValue) int {
	if a.Tag == core.TagNull && b.Tag == core.TagNull {
		return 0
	}
	if a.Tag == core.TagNull {
		return -1
	}
	if b.Tag == core.TagNull {
		return 1
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func evalIntLiteral(e Expression, params map[string]core.PropertyValue) int {
	switch e.Kind {
	case ExprInt:
		return int(e.IntV)
	case ExprParam:
		if v, ok := params[e.ParamName]; ok && v.Tag == core.TagInteger {
			return int(v.IntV)
		}
	}
	return 0
}

// evalFuncCall implements the aggregate functions by
// folding over the already-bound scalar list argument; non-aggregate
// calls fall through to nil/Null since the GQL surface names only the
// procedures in the CALL table for graph navigation.
func (ex *Executor) evalFuncCall(e Expression, b Bindings, params map[string]core.PropertyValue) (core.PropertyValue, error) {
	args := make([]core.PropertyValue, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := ex.evalExpr(a, b, params)
		if err != nil {
			return core.NullValue(), err
		}
		args = append(args, v)
	}
	switch strings.ToUpper(e.FuncName) {
	case "COUNT":
		return core.IntValue(int64(len(args))), nil
	case "SUM":
		var total float64
		for _, a := range args {
			if f, ok := asFloat(a); ok {
				total += f
			}
		}
		return core.FloatValue(total), nil
	case "AVG":
		if len(args) == 0 {
			return core.NullValue(), nil
		}
		var total float64
		for _, a := range args {
			if f, ok := asFloat(a); ok {
				total += f
			}
		}
		return core.FloatValue(total / float64(len(args))), nil
	case "MIN":
		return foldExtreme(args, true), nil
	case "MAX":
		return foldExtreme(args, false), nil
	default:
		return core.NullValue(), core.NewError(core.KindQueryError, "unknown function: "+e.FuncName)
	}
}

func foldExtreme(args []core.PropertyValue, min bool) core.PropertyValue {
	if len(args) == 0 {
		return core.NullValue()
	}
	best := args[0]
	bestF, _ := asFloat(best)
	for _, a := range args[1:] {
		f, ok := asFloat(a)
		if !ok {
			continue
		}
		if (min && f < bestF) || (!min && f > bestF) {
			best, bestF = a, f
		}
	}
	return best
}

func (ex *Executor) evalCase(e Expression, b Bindings, params map[string]core.PropertyValue) (core.PropertyValue, error) {
	for _, branch := range e.CaseBranches {
		cond, err := ex.evalExpr(branch.When, b, params)
		if err != nil {
			return core.NullValue(), err
		}
		if truthy(cond) {
			return ex.evalExpr(branch.Then, b, params)
		}
	}
	if e.CaseElse != nil {
		return ex.evalExpr(*e.CaseElse, b, params)
	}
	return core.NullValue(), nil
}

// evalExists evaluates EXISTS{pattern} by running each of the pattern's
// PathPatterns against the current binding; it is true if any of them matches.
func (ex *Executor) evalExists(e Expression, b Bindings, params map[string]core.PropertyValue) (core.PropertyValue, error) {
	stats := QueryStats{}
	for _, pp := range e.ExistsPattern.Paths {
		results, err := ex.evalPathPattern(pp, b, &stats, params)
		if err != nil {
			return core.BoolValue(false), nil
		}
		if len(results) > 0 {
			return core.BoolValue(true), nil
		}
	}
	return core.BoolValue(false), nil
}

// evalQuantified evaluates ALL/ANY/NONE/SINGLE over a bound vertex list.
func (ex *Executor) evalQuantified(e Expression, b Bindings, params map[string]core.PropertyValue) (core.PropertyValue, error) {
	src, err := ex.evalExpr(*e.QSource, b, params)
	if err != nil {
		return core.BoolValue(false), err
	}
	items := src.ListV
	if bv, ok := b[e.QVariable]; ok && bv.Kind == BoundVertexList {
		items = nil
		for _, id := range bv.VertexList {
			items = append(items, core.IntValue(int64(id)))
		}
	}
	count := 0
	for _, item := range items {
		nb := b.clone()
		nb[e.QVariable] = BoundValue{Kind: BoundScalar, Scalar: item}
		ok, err := ex.evalExpr(*e.QPred, nb, params)
		if err != nil {
			return core.BoolValue(false), err
		}
		if truthy(ok) {
			count++
		}
	}
	switch e.QKind {
	case QAll:
		return core.BoolValue(count == len(items)), nil
	case QAny:
		return core.BoolValue(count > 0), nil
	case QNone:
		return core.BoolValue(count == 0), nil
	case QSingle:
		return core.BoolValue(count == 1), nil
	default:
		return core.BoolValue(false), nil
	}
}

// projectExpr evaluates a RETURN item into a ResultValue, preserving
// Vertex/Edge/Path identity (rather than collapsing to a scalar id) when
// the expression is a bare variable bound to one of those kinds.
func (ex *Executor) projectExpr(e Expression, b Bindings, params map[string]core.PropertyValue) ResultValue {
	if e.Kind == ExprVariable {
		if bv, ok := b[e.Variable]; ok {
			switch bv.Kind {
			case BoundVertex:
				if v, err := ex.Graph.Vertex(bv.VertexID); err == nil {
					return vertexResult(v)
				}
			case BoundEdge:
				if edge, err := ex.Graph.Edge(bv.EdgeID); err == nil {
					return edgeResult(edge)
				}
			case BoundPath:
				return pathResult(bv.Path)
			}
		}
	}
	v, err := ex.evalExpr(e, b, params)
	if err != nil {
		return nullResult()
	}
	return scalarResult(v)
}
