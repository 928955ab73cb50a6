package gql

import "strconv"

// parseGraphPattern parses a comma-separated list of PathPatterns plus an
// optional KEEP(prefix) clause.
func (p *Parser) parseGraphPattern() (*GraphPattern, error) {
	gp := &GraphPattern{}
	for {
		path, err := p.parsePathPattern()
		if err != nil {
			return nil, err
		}
		gp.Paths = append(gp.Paths, path)
		if !p.matchByte(',') {
			break
		}
	}
	if p.matchKeyword("KEEP") {
		if err := p.expectByte('('); err != nil {
			return nil, err
		}
		prefix, err := p.parsePathSearchPrefix()
		if err != nil {
			return nil, err
		}
		gp.Keep = prefix
		if err := p.expectByte(')'); err != nil {
			return nil, err
		}
	}
	return gp, nil
}

func (p *Parser) parsePathSearchPrefix() (*PathSearchPrefix, error) {
	switch {
	case p.matchKeyword("ALL"):
		if p.matchKeyword("SHORTEST") {
			return &PathSearchPrefix{Kind: PrefixAllShortest}, nil
		}
		return &PathSearchPrefix{Kind: PrefixAll}, nil
	case p.matchKeyword("ANY"):
		if p.matchKeyword("SHORTEST") {
			return &PathSearchPrefix{Kind: PrefixAnyShortest}, nil
		}
		if n, ok := p.tryParseInt(); ok {
			return &PathSearchPrefix{Kind: PrefixAnyK, K: n}, nil
		}
		return &PathSearchPrefix{Kind: PrefixAny}, nil
	case p.matchKeyword("SHORTEST"):
		n, _ := p.tryParseInt()
		if p.matchKeyword("GROUPS") {
			return &PathSearchPrefix{Kind: PrefixShortestKGroups, K: n}, nil
		}
		return &PathSearchPrefix{Kind: PrefixShortestK, K: n}, nil
	}
	return nil, nil
}

func (p *Parser) tryParseInt() (int, bool) {
	save := p.pos
	p.skipWhitespace()
	start := p.pos
	for !p.eof() && p.peekByte() >= '0' && p.peekByte() <= '9' {
		p.pos++
	}
	if p.pos == start {
		p.pos = save
		return 0, false
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		p.pos = save
		return 0, false
	}
	return n, true
}

// parsePathPattern parses one optionally-named, optionally-moded,
// optionally-prefixed sequence of path elements.
func (p *Parser) parsePathPattern() (*PathPattern, error) {
	pp := &PathPattern{}

	save := p.pos
	if ident := p.peekIdent(); ident != "" {
		savedAfterIdent := p.pos
		p.parseIdentifier()
		if p.matchByte('=') {
			pp.Variable = ident
		} else {
			p.pos = savedAfterIdent
			p.pos = save
		}
	}

	if mode, ok := p.tryParsePathMode(); ok {
		pp.Mode = &mode
	}
	if prefix, err := p.parsePathSearchPrefix(); err != nil {
		return nil, err
	} else if prefix != nil {
		pp.Prefix = prefix
	}

	elements, err := p.parsePathElements()
	if err != nil {
		return nil, err
	}
	pp.Elements = elements
	return pp, nil
}

func (p *Parser) tryParsePathMode() (PathMode, bool) {
	switch {
	case p.matchKeyword("WALK"):
		return PathWalk, true
	case p.matchKeyword("TRAIL"):
		return PathTrail, true
	case p.matchKeyword("SIMPLE"):
		return PathSimple, true
	case p.matchKeyword("ACYCLIC"):
		return PathAcyclic, true
	}
	return PathWalk, false
}

// parsePathElements alternates Node/Edge/ParenPath elements until it can
// no longer recognize a node or edge start.
func (p *Parser) parsePathElements() ([]PathElement, error) {
	var elems []PathElement
	for {
		p.skipWhitespace()
		switch p.peekByte() {
		case '(':
			el, err := p.parseParenOrNodeElement()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
		case '-', '<', '~':
			el, err := p.parseEdgeElement()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
		default:
			if len(elems) == 0 {
				return nil, p.errorf("expected a node or edge pattern")
			}
			return elems, nil
		}
	}
}

// parseParenOrNodeElement disambiguates a parenthesized nested sub-path
// (`(pvar = (...))` or `(... path term ...)`) from a plain node pattern by
// tentative parsing: it tries the subpath forms first and falls back to a
// node pattern on failure, a look-ahead-and-backtrack strategy.
func (p *Parser) parseParenOrNodeElement() (PathElement, error) {
	save := p.pos
	if el, err := p.tryParseParenPath(); err == nil {
		return el, nil
	}
	p.pos = save
	node, err := p.parseNodePattern()
	if err != nil {
		return PathElement{}, err
	}
	return PathElement{Kind: ElementNode, Node: node}, nil
}

func (p *Parser) tryParseParenPath() (PathElement, error) {
	if err := p.expectByte('('); err != nil {
		return PathElement{}, err
	}
	el := PathElement{Kind: ElementParenPath}

	save := p.pos
	if ident := p.peekIdent(); ident != "" {
		p.parseIdentifier()
		if p.matchByte('=') {
			el.SubVar = ident
		} else {
			p.pos = save
		}
	}
	if el.SubVar == "" {
		// No subpath-variable prefix: this paren must directly open a
		// nested path term (more than one element, or a mode/prefix
		// keyword) to count as a ParenPath rather than a NodePattern.
		if mode, ok := p.tryParsePathMode(); ok {
			el.Mode = &mode
		} else if !looksLikeMultiElementPath(p) {
			return PathElement{}, p.errorf("not a parenthesized path")
		}
	}

	sub := &PathPattern{}
	if el.Mode != nil {
		sub.Mode = el.Mode
	}
	elements, err := p.parsePathElements()
	if err != nil {
		return PathElement{}, err
	}
	if len(elements) < 2 {
		return PathElement{}, p.errorf("not a parenthesized path")
	}
	sub.Elements = elements
	el.Sub = sub

	if !p.matchByte(')') {
		return PathElement{}, p.errorf("expected ) to close parenthesized path")
	}

	if p.matchKeyword("WHERE") {
		w, err := p.parseExpression()
		if err != nil {
			return PathElement{}, err
		}
		el.Where = w
	}
	if q, ok := p.tryParseQuantifier(); ok {
		el.Quantifier = &q
	}
	return el, nil
}

// looksLikeMultiElementPath performs unbounded look-ahead to see whether
// the upcoming content before the matching `)` contains more than one
// node/edge element, without consuming input.
func looksLikeMultiElementPath(p *Parser) bool {
	depth := 0
	count := 0
	i := p.pos
	for i < len(p.src) {
		c := p.src[i]
		switch c {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return count > 1
			}
			depth--
		case '-', '<', '~':
			if depth == 0 {
				count++
			}
		}
		i++
	}
	return false
}

func (p *Parser) parseNodePattern() (*NodePattern, error) {
	if err := p.expectByte('('); err != nil {
		return nil, err
	}
	np := &NodePattern{}
	if ident := p.peekIdent(); ident != "" && ident != "WHERE" {
		np.Variable, _ = p.parseIdentifier()
	}
	if p.matchByte(':') {
		label, err := p.parseLabelExpression()
		if err != nil {
			return nil, err
		}
		np.Label = label
	}
	if p.peekByte() == '{' {
		props, err := p.parsePropertyFilters()
		if err != nil {
			return nil, err
		}
		np.Properties = props
	}
	if p.matchKeyword("WHERE") {
		w, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		np.Where = w
	}
	if err := p.expectByte(')'); err != nil {
		return nil, err
	}
	return np, nil
}

func (p *Parser) parsePropertyFilters() (map[string]Expression, error) {
	if err := p.expectByte('{'); err != nil {
		return nil, err
	}
	m := make(map[string]Expression)
	if !p.matchByte('}') {
		for {
			key, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			if err := p.expectByte(':'); err != nil {
				return nil, err
			}
			val, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			m[key] = val
			if !p.matchByte(',') {
				break
			}
		}
		if err := p.expectByte('}'); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// parseEdgeElement parses one of the seven direction forms by combining a
// left prefix (`<-`, `<~`, `~`, `-`) with a bracketed label/property body
// and a right suffix (`->`, `~>`, `~`, `-`).
func (p *Parser) parseEdgeElement() (PathElement, error) {
	p.skipWhitespace()
	leftArrow := false
	leftTilde := false
	if p.matchString("<-") {
		leftArrow = true
	} else if p.matchString("<~") {
		leftArrow = true
		leftTilde = true
	} else if p.matchString("~") {
		leftTilde = true
	} else if err := p.expectByte('-'); err != nil {
		return PathElement{}, err
	}

	ep := &EdgePattern{}
	if p.matchByte('[') {
		if ident := p.peekIdent(); ident != "" {
			ep.Variable, _ = p.parseIdentifier()
		}
		if p.matchByte(':') {
			label, err := p.parseLabelExpression()
			if err != nil {
				return PathElement{}, err
			}
			ep.Label = label
		}
		if p.peekByte() == '{' {
			props, err := p.parsePropertyFilters()
			if err != nil {
				return PathElement{}, err
			}
			ep.Properties = props
		}
		if p.matchKeyword("WHERE") {
			w, err := p.parseExpression()
			if err != nil {
				return PathElement{}, err
			}
			ep.Where = w
		}
		if err := p.expectByte(']'); err != nil {
			return PathElement{}, err
		}
	}

	rightArrow := false
	rightTilde := false
	if p.matchString("->") {
		rightArrow = true
	} else if p.matchString("~>") {
		rightArrow = true
		rightTilde = true
	} else if p.matchString("~") {
		rightTilde = true
	} else if err := p.expectByte('-'); err != nil {
		return PathElement{}, err
	}

	ep.Direction = resolveDirection(leftArrow, leftTilde, rightArrow, rightTilde)

	if q, ok := p.tryParseQuantifier(); ok {
		ep.Quantifier = &q
	}

	return PathElement{Kind: ElementEdge, Edge: ep}, nil
}

// resolveDirection maps the left-prefix/right-suffix combination to one of
// the seven ISO GQL direction variants. `~` marks an "undirected or"
// variant on whichever side it appears.
func resolveDirection(leftArrow, leftTilde, rightArrow, rightTilde bool) Direction {
	switch {
	case leftArrow && !rightArrow:
		return Incoming
	case rightArrow && !leftArrow:
		return Outgoing
	case leftArrow && rightArrow:
		return AnyDirection
	case leftTilde && rightTilde:
		return Undirected
	case leftTilde && !rightTilde:
		return LeftOrUndirected
	case rightTilde && !leftTilde:
		return UndirectedOrRight
	default:
		return LeftOrRight
	}
}

// tryParseQuantifier accepts `*`, `+`, `?`, or a `{...}` range suffix.
func (p *Parser) tryParseQuantifier() (Quantifier, bool) {
	save := p.pos
	p.skipWhitespace()
	switch p.peekByte() {
	case '*':
		p.pos++
		return Quantifier{Min: 0, Max: -1}, true
	case '+':
		p.pos++
		return Quantifier{Min: 1, Max: -1}, true
	case '?':
		p.pos++
		return Quantifier{Min: 0, Max: 1}, true
	case '{':
		p.pos++
		min, hasMin := p.tryParseInt()
		max := -1
		hasMax := false
		if p.matchByte(',') {
			max, hasMax = p.tryParseInt()
			if !hasMax {
				max = -1
			}
		} else {
			max = min
			hasMax = hasMin
		}
		if !p.matchByte('}') {
			p.pos = save
			return Quantifier{}, false
		}
		if !hasMin {
			min = 0
		}
		_ = hasMax
		return Quantifier{Min: min, Max: max}, true
	}
	p.pos = save
	return Quantifier{}, false
}

// parseLabelExpression is a three-layer precedence climber: disjunction
// (loosest) over conjunction over negation/primary (tightest), with `(...)`
// and `%` as primaries.
func (p *Parser) parseLabelExpression() (*LabelExpression, error) {
	return p.parseLabelDisjunction()
}

func (p *Parser) parseLabelDisjunction() (*LabelExpression, error) {
	left, err := p.parseLabelConjunction()
	if err != nil {
		return nil, err
	}
	operands := []*LabelExpression{left}
	for p.matchByte('|') {
		right, err := p.parseLabelConjunction()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return &LabelExpression{Kind: LabelDisjunction, Operands: operands}, nil
}

func (p *Parser) parseLabelConjunction() (*LabelExpression, error) {
	left, err := p.parseLabelFactor()
	if err != nil {
		return nil, err
	}
	operands := []*LabelExpression{left}
	for p.matchByte('&') {
		right, err := p.parseLabelFactor()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return &LabelExpression{Kind: LabelConjunction, Operands: operands}, nil
}

func (p *Parser) parseLabelFactor() (*LabelExpression, error) {
	if p.matchByte('!') {
		sub, err := p.parseLabelFactor()
		if err != nil {
			return nil, err
		}
		return &LabelExpression{Kind: LabelNegation, Sub: sub}, nil
	}
	return p.parseLabelPrimary()
}

func (p *Parser) parseLabelPrimary() (*LabelExpression, error) {
	p.skipWhitespace()
	if p.matchByte('(') {
		expr, err := p.parseLabelDisjunction()
		if err != nil {
			return nil, err
		}
		if err := p.expectByte(')'); err != nil {
			return nil, err
		}
		return expr, nil
	}
	if p.matchByte('%') {
		return &LabelExpression{Kind: LabelWildcard}, nil
	}
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if !knownVertexLabels[name] && !knownEdgeLabels[name] {
		return nil, p.errorf("Unknown label: %s", name)
	}
	return &LabelExpression{Kind: LabelName, Name: name}, nil
}
