package gql

import (
	"fmt"
	"strings"
)

// knownVertexLabels and knownEdgeLabels ground label-expression primaries
// against the closed-ish label vocabulary from core/vertex.go, core/edge.go.
var knownVertexLabels = map[string]bool{
	"Account":  true,
	"Contract": true,
}

var knownEdgeLabels = map[string]bool{
	"Transfer": true,
	"Calls":    true,
	"Deploys":  true,
	"Owns":     true,
}

// Parser is a hand-written recursive-descent parser over a byte cursor
// into the input string. It is token-free: keywords and punctuation are
// matched directly against the cursor rather than through a separate
// lexing pass.
type Parser struct {
	src string
	pos int
}

// NewParser creates a parser over src.
func NewParser(src string) *Parser {
	return &Parser{src: src}
}

// Parse parses exactly one statement, ignoring a single trailing `;`.
func Parse(src string) (*Statement, error) {
	p := NewParser(src)
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.peekByte() == ';' {
		p.pos++
	}
	p.skipWhitespace()
	if !p.eof() {
		return nil, p.errorf("unexpected trailing input")
	}
	return stmt, nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

// ParseError reports a parse failure with the byte offset it occurred at.
// The parser performs no error recovery: the first unexpected token ends
// parsing.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte %d: %s", e.Pos, e.Msg)
}

func (p *Parser) eof() bool { return p.pos >= len(p.src) }

func (p *Parser) peekByte() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *Parser) peekAt(off int) byte {
	if p.pos+off >= len(p.src) {
		return 0
	}
	return p.src[p.pos+off]
}

// skipWhitespace also skips `//` line comments and `/* */` block comments.
func (p *Parser) skipWhitespace() {
	for !p.eof() {
		c := p.peekByte()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '/' && p.peekAt(1) == '/':
			for !p.eof() && p.peekByte() != '\n' {
				p.pos++
			}
		case c == '/' && p.peekAt(1) == '*':
			p.pos += 2
			for !p.eof() && !(p.peekByte() == '*' && p.peekAt(1) == '/') {
				p.pos++
			}
			if !p.eof() {
				p.pos += 2
			}
		default:
			return
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// peekIdent returns the identifier at the cursor (after skipping
// whitespace) without consuming it.
func (p *Parser) peekIdent() string {
	save := p.pos
	p.skipWhitespace()
	start := p.pos
	if !isIdentStart(p.peekByte()) {
		p.pos = save
		return ""
	}
	for !p.eof() && isIdentCont(p.peekByte()) {
		p.pos++
	}
	ident := p.src[start:p.pos]
	p.pos = save
	return ident
}

// matchKeyword consumes and returns true iff the next token is kw
// (case-insensitive) followed by a non-identifier character.
func (p *Parser) matchKeyword(kw string) bool {
	save := p.pos
	p.skipWhitespace()
	start := p.pos
	for !p.eof() && isIdentCont(p.peekByte()) {
		p.pos++
	}
	word := p.src[start:p.pos]
	if strings.EqualFold(word, kw) {
		return true
	}
	p.pos = save
	return false
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.matchKeyword(kw) {
		return p.errorf("expected keyword %q", kw)
	}
	return nil
}

func (p *Parser) matchAnyKeyword(kws ...string) string {
	for _, kw := range kws {
		if p.matchKeyword(kw) {
			return kw
		}
	}
	return ""
}

// parseIdentifier consumes and returns one identifier.
func (p *Parser) parseIdentifier() (string, error) {
	p.skipWhitespace()
	start := p.pos
	if !isIdentStart(p.peekByte()) {
		return "", p.errorf("expected identifier")
	}
	for !p.eof() && isIdentCont(p.peekByte()) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

// matchByte consumes the next byte if it equals b.
func (p *Parser) matchByte(b byte) bool {
	p.skipWhitespace()
	if p.peekByte() == b {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) expectByte(b byte) error {
	if !p.matchByte(b) {
		return p.errorf("expected %q", string(b))
	}
	return nil
}

// matchString consumes s literally (case-sensitive, for punctuation runs
// like "->" or "<-[").
func (p *Parser) matchString(s string) bool {
	p.skipWhitespace()
	if strings.HasPrefix(p.src[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

// ---- top-level dispatch ----

func (p *Parser) parseStatement() (*Statement, error) {
	p.skipWhitespace()
	switch {
	case p.matchKeyword("OPTIONAL"):
		return p.parseMatchFrom(true)
	case p.matchKeyword("MATCH"):
		return p.finishMatch(false)
	case p.peekIdent() == "" && p.peekByte() == 0:
		return nil, p.errorf("empty statement")
	case p.matchKeyword("INSERT"):
		return p.parseInsert()
	case p.matchKeyword("DELETE"):
		return p.parseDelete(false)
	case p.matchKeyword("DETACH"):
		if err := p.expectKeyword("DELETE"); err != nil {
			return nil, err
		}
		return p.parseDelete(true)
	case p.matchKeyword("SET"):
		return p.parseSet()
	case p.matchKeyword("REMOVE"):
		return p.parseRemove()
	case p.matchKeyword("CALL"):
		return p.parseCall(false)
	case p.matchKeyword("CREATE"):
		return p.parseCreateGraph()
	case p.matchKeyword("DROP"):
		return p.parseDropGraph()
	case p.matchKeyword("SHOW"):
		return p.parseShow()
	case p.matchKeyword("DESCRIBE"):
		return p.parseDescribe()
	case p.matchKeyword("USE"):
		return p.parseUse()
	case p.matchKeyword("LET"), p.matchKeyword("FOR"), p.matchKeyword("FILTER"),
		p.matchKeyword("SELECT"), p.matchKeyword("SESSION"), p.matchKeyword("START"),
		p.matchKeyword("COMMIT"), p.matchKeyword("ROLLBACK"):
		return p.parseMinimalStatement()
	}
	return nil, p.errorf("unrecognized statement")
}

// parseMatchFrom handles the `OPTIONAL MATCH ...` prefix already consumed.
func (p *Parser) parseMatchFrom(optional bool) (*Statement, error) {
	if err := p.expectKeyword("MATCH"); err != nil {
		return nil, err
	}
	return p.finishMatch(optional)
}

// parseMinimalStatement accepts but does not deeply interpret the
// LET/FOR/FILTER/SELECT/SESSION/transaction-control statement forms:
// the rest of the statement up to `;` is skipped and the Statement carries
// only its leading keyword, so the parser never errors on them. The
// executor does not run them; it answers with a one-row result naming the
// keyword. Full ISO composite-query support is out of scope.
func (p *Parser) parseMinimalStatement() (*Statement, error) {
	kwEnd := p.pos
	kwStart := kwEnd
	for kwStart > 0 && isIdentCont(p.src[kwStart-1]) {
		kwStart--
	}
	for !p.eof() && p.peekByte() != ';' {
		p.pos++
	}
	return &Statement{Kind: StmtLet, Keyword: p.src[kwStart:kwEnd]}, nil
}

func max0(i int) int {
	if i < 0 {
		return 0
	}
	return i
}

// ---- MATCH ----

func (p *Parser) finishMatch(optional bool) (*Statement, error) {
	pattern, err := p.parseGraphPattern()
	if err != nil {
		return nil, err
	}
	stmt := &Statement{Kind: StmtMatch, Optional: optional, Pattern: pattern}

	if p.matchKeyword("WHERE") {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Where = expr
	}

	if p.matchKeyword("RETURN") {
		items, err := p.parseReturnItems()
		if err != nil {
			return nil, err
		}
		stmt.Return = items
	}

	if p.matchKeyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		items, err := p.parseOrderItems()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = items
	}

	if p.matchKeyword("SKIP") {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Skip = e
	}

	if p.matchKeyword("LIMIT") {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Limit = e
	}
	return stmt, nil
}

func (p *Parser) parseReturnItems() ([]ReturnItem, error) {
	var items []ReturnItem
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		item := ReturnItem{Expr: expr}
		if p.matchKeyword("AS") {
			alias, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			item.Alias = alias
		}
		items = append(items, item)
		if !p.matchByte(',') {
			break
		}
	}
	return items, nil
}

func (p *Parser) parseOrderItems() ([]OrderItem, error) {
	var items []OrderItem
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		item := OrderItem{Expr: expr}
		if p.matchKeyword("DESC") {
			item.Desc = true
		} else {
			p.matchKeyword("ASC")
		}
		items = append(items, item)
		if !p.matchByte(',') {
			break
		}
	}
	return items, nil
}

// ---- INSERT / DELETE / SET / REMOVE ----

func (p *Parser) parseInsert() (*Statement, error) {
	pattern, err := p.parseGraphPattern()
	if err != nil {
		return nil, err
	}
	return &Statement{Kind: StmtInsert, InsertPattern: pattern}, nil
}

func (p *Parser) parseDelete(detach bool) (*Statement, error) {
	var vars []string
	for {
		v, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
		if !p.matchByte(',') {
			break
		}
	}
	return &Statement{Kind: StmtDelete, DeleteVars: vars, Detach: detach}, nil
}

func (p *Parser) parseSetItems() ([]SetItem, error) {
	var items []SetItem
	for {
		v, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		if err := p.expectByte('.'); err != nil {
			return nil, err
		}
		prop, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		items = append(items, SetItem{Variable: v, Property: prop})
		if !p.matchByte(',') {
			break
		}
	}
	return items, nil
}

func (p *Parser) parseSet() (*Statement, error) {
	var items []SetItem
	for {
		v, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		if err := p.expectByte('.'); err != nil {
			return nil, err
		}
		prop, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		if err := p.expectByte('='); err != nil {
			return nil, err
		}
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, SetItem{Variable: v, Property: prop, Value: val})
		if !p.matchByte(',') {
			break
		}
	}
	return &Statement{Kind: StmtSet, SetItems: items}, nil
}

func (p *Parser) parseRemove() (*Statement, error) {
	items, err := p.parseSetItems()
	if err != nil {
		return nil, err
	}
	return &Statement{Kind: StmtRemove, RemoveItems: items}, nil
}

// ---- CALL ----

func (p *Parser) parseCall(optional bool) (*Statement, error) {
	name, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	var args []Expression
	if p.matchByte('(') {
		if !p.matchByte(')') {
			for {
				e, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, e)
				if !p.matchByte(',') {
					break
				}
			}
			if err := p.expectByte(')'); err != nil {
				return nil, err
			}
		}
	}
	stmt := &Statement{Kind: StmtCall, ProcName: name, Args: args}
	if p.matchKeyword("YIELD") {
		for {
			id, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			stmt.Yield = append(stmt.Yield, id)
			if !p.matchByte(',') {
				break
			}
		}
	}
	return stmt, nil
}

func (p *Parser) parseDottedName() (string, error) {
	first, err := p.parseIdentifier()
	if err != nil {
		return "", err
	}
	name := first
	for p.matchByte('.') {
		part, err := p.parseIdentifier()
		if err != nil {
			return "", err
		}
		name += "." + part
	}
	return name, nil
}

// ---- CREATE GRAPH / DROP GRAPH / SHOW / DESCRIBE / USE ----

func (p *Parser) parseCreateGraph() (*Statement, error) {
	if err := p.expectKeyword("GRAPH"); err != nil {
		return nil, err
	}
	stmt := &Statement{Kind: StmtCreateGraph}
	if p.matchKeyword("IF") {
		if err := p.expectKeyword("NOT"); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("EXISTS"); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	stmt.GraphName = name
	return stmt, nil
}

func (p *Parser) parseDropGraph() (*Statement, error) {
	if err := p.expectKeyword("GRAPH"); err != nil {
		return nil, err
	}
	stmt := &Statement{Kind: StmtDropGraph}
	if p.matchKeyword("IF") {
		if err := p.expectKeyword("EXISTS"); err != nil {
			return nil, err
		}
		stmt.IfExists = true
	}
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	stmt.GraphName = name
	return stmt, nil
}

var showTargets = map[string]ShowTarget{
	"GRAPHS":        ShowGraphs,
	"GRAPHTYPES":    ShowGraphTypes,
	"SCHEMAS":       ShowSchemas,
	"LABELS":        ShowLabels,
	"EDGETYPES":     ShowEdgeTypes,
	"PROPERTYKEYS":  ShowPropertyKeys,
	"FUNCTIONS":     ShowFunctions,
	"PROCEDURES":    ShowProcedures,
	"INDEXES":       ShowIndexes,
	"CONSTRAINTS":   ShowConstraints,
}

func (p *Parser) parseShow() (*Statement, error) {
	// Multi-word targets (GRAPH TYPES, EDGE TYPES, PROPERTY KEYS) are
	// normalized by stripping the space before lookup.
	first, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	combined := strings.ToUpper(first)
	save := p.pos
	if second := p.peekIdent(); second != "" {
		candidate := combined + strings.ToUpper(second)
		if _, ok := showTargets[candidate]; ok {
			p.parseIdentifier()
			combined = candidate
		} else {
			p.pos = save
		}
	}
	target, ok := showTargets[combined]
	if !ok {
		return nil, p.errorf("unknown SHOW target %q", first)
	}
	stmt := &Statement{Kind: StmtShow, ShowTarget: target}
	if p.matchKeyword("LIKE") {
		lit, err := p.parseStringLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Like = lit
	}
	return stmt, nil
}

func (p *Parser) parseDescribe() (*Statement, error) {
	kind := p.matchAnyKeyword("GRAPHTYPE", "GRAPH", "SCHEMA", "LABEL", "EDGETYPE")
	if kind == "" {
		return nil, p.errorf("expected DESCRIBE target")
	}
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	return &Statement{Kind: StmtDescribe, Keyword: kind, GraphName: name}, nil
}

func (p *Parser) parseUse() (*Statement, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	return &Statement{Kind: StmtUse, GraphName: name}, nil
}
