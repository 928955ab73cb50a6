// Package gql implements a hand-written recursive-descent parser and
// interpreter for the graph query surface:
// MATCH/INSERT/DELETE/SET/REMOVE/CALL statements over path patterns with
// label expressions and variable-length edge quantifiers.
package gql

// Direction is an edge pattern's arrow shape. All seven ISO GQL variants
// are kept as distinct parse-time values even though Outgoing/Incoming are
// the only ones resolved directionally at execution time; the remaining
// five degrade to the permissive union of both adjacency lists.
type Direction uint8

const (
	Outgoing Direction = iota
	Incoming
	Undirected
	AnyDirection
	LeftOrUndirected
	UndirectedOrRight
	LeftOrRight
)

// PathMode constrains which vertices/edges a variable-length expansion may
// revisit.
type PathMode uint8

const (
	PathWalk PathMode = iota
	PathTrail
	PathSimple
	PathAcyclic
)

// PathSearchPrefix selects a path-search strategy instead of plain
// enumeration (ALL SHORTEST, ANY k, etc.)
type PathSearchPrefixKind uint8

const (
	PrefixNone PathSearchPrefixKind = iota
	PrefixAll
	PrefixAny
	PrefixAnyK
	PrefixAllShortest
	PrefixAnyShortest
	PrefixShortestK
	PrefixShortestKGroups
)

type PathSearchPrefix struct {
	Kind PathSearchPrefixKind
	K    int
}

// Quantifier bounds repetition of an edge pattern or parenthesized subpath:
// `*` = {0,}, `+` = {1,}, `?` = {0,1}, `{n}`, `{n,}`, `{,m}`, `{n,m}`.
type Quantifier struct {
	Min int
	Max int // -1 = unbounded
}

// LabelExprKind discriminates the LabelExpression sum type.
type LabelExprKind uint8

const (
	LabelName LabelExprKind = iota
	LabelWildcard
	LabelNegation
	LabelConjunction
	LabelDisjunction
)

// LabelExpression is a closed tagged union over label matching: a single
// name, `%` wildcard, `!`-negation, `&`-conjunction, or `|`-disjunction.
// Precedence (loosest to tightest): disjunction < conjunction < negation.
type LabelExpression struct {
	Kind     LabelExprKind
	Name     string
	Sub      *LabelExpression   // Negation
	Operands []*LabelExpression // Conjunction / Disjunction
}

// NodePattern matches a single vertex: optional binding variable, optional
// label expression, equality property filters, and an optional inline
// WHERE expression.
type NodePattern struct {
	Variable   string
	Label      *LabelExpression
	Properties map[string]Expression
	Where      Expression
}

// EdgePattern matches a single edge (or, with a Quantifier, a
// variable-length run of edges).
type EdgePattern struct {
	Variable   string
	Label      *LabelExpression
	Properties map[string]Expression
	Where      Expression
	Direction  Direction
	Quantifier *Quantifier
}

// PathElementKind discriminates PathElement.
type PathElementKind uint8

const (
	ElementNode PathElementKind = iota
	ElementEdge
	ElementParenPath
)

// PathElement is one step of a PathPattern: a node, an edge, or a
// parenthesized nested sub-path.
type PathElement struct {
	Kind       PathElementKind
	Node       *NodePattern
	Edge       *EdgePattern
	SubVar     string
	Mode       *PathMode
	Sub        *PathPattern
	Where      Expression
	Quantifier *Quantifier
}

// PathPattern is an alternating sequence of node/edge PathElements with
// optional variable binding, path mode, and search prefix.
type PathPattern struct {
	Variable string
	Mode     *PathMode
	Prefix   *PathSearchPrefix
	Elements []PathElement
}

// GraphPattern is the full pattern of a MATCH clause: one or more
// PathPatterns plus an optional KEEP clause.
type GraphPattern struct {
	Paths []*PathPattern
	Keep  *PathSearchPrefix
}

// OrderItem is one ORDER BY term.
type OrderItem struct {
	Expr Expression
	Desc bool
}

// ReturnItem is one RETURN projection: an expression plus an optional
// alias.
type ReturnItem struct {
	Expr  Expression
	Alias string
}

// StatementKind discriminates the Statement sum type.
type StatementKind uint8

const (
	StmtMatch StatementKind = iota
	StmtInsert
	StmtDelete
	StmtSet
	StmtRemove
	StmtCall
	StmtCreateGraph
	StmtDropGraph
	StmtShow
	StmtDescribe
	StmtUse
	StmtLet
	StmtFor
	StmtFilter
	StmtSelect
	StmtComposite
	StmtSession
	StmtTransaction
)

// ShowTarget enumerates the catalog objects SHOW can list.
type ShowTarget uint8

const (
	ShowGraphs ShowTarget = iota
	ShowGraphTypes
	ShowSchemas
	ShowLabels
	ShowEdgeTypes
	ShowPropertyKeys
	ShowFunctions
	ShowProcedures
	ShowIndexes
	ShowConstraints
)

// SetItem is one `SET v.prop = expr` assignment.
type SetItem struct {
	Variable string
	Property string
	Value    Expression
}

// Statement is the closed sum type over every top-level GQL statement
// form. Only one group of fields is meaningful,
// selected by Kind.
type Statement struct {
	Kind StatementKind

	// Match
	Optional  bool
	Pattern   *GraphPattern
	Where     Expression
	Return    []ReturnItem
	OrderBy   []OrderItem
	Skip      Expression
	Limit     Expression

	// Insert / Delete / Set / Remove
	InsertPattern *GraphPattern
	DeleteVars    []string
	Detach        bool
	SetItems      []SetItem
	RemoveItems   []SetItem

	// Call
	ProcName string
	Args     []Expression
	Yield    []string

	// CreateGraph / DropGraph / Use / Describe
	GraphName   string
	IfNotExists bool
	IfExists    bool

	// Show
	ShowTarget ShowTarget
	Like       string

	// Session / Transaction: minimal single-field payload
	Keyword string
}

// ExprKind discriminates the Expression sum type.
type ExprKind uint8

const (
	ExprNull ExprKind = iota
	ExprBool
	ExprInt
	ExprFloat
	ExprString
	ExprVariable
	ExprProperty
	ExprFuncCall
	ExprBinary
	ExprUnary
	ExprList
	ExprMap
	ExprParam
	ExprCase
	ExprExists
	ExprQuantified
)

// QuantifiedKind enumerates ALL/ANY/NONE/SINGLE predicate quantifiers.
type QuantifiedKind uint8

const (
	QAll QuantifiedKind = iota
	QAny
	QNone
	QSingle
)

// CaseBranch is one WHEN/THEN pair of a CASE expression.
type CaseBranch struct {
	When Expression
	Then Expression
}

// Expression is the closed tagged union over scalar/structural GQL
// expressions.
type Expression struct {
	Kind ExprKind

	BoolV   bool
	IntV    int64
	FloatV  float64
	StringV string

	Variable string
	Property string

	FuncName string
	Args     []Expression

	Op    string
	Left  *Expression
	Right *Expression

	ListV []Expression
	MapV  map[string]Expression

	ParamName string

	CaseBranches []CaseBranch
	CaseElse     *Expression

	ExistsPattern *GraphPattern

	QKind     QuantifiedKind
	QVariable string
	QSource   *Expression
	QPred     *Expression
}
