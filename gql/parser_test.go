package gql

import "testing"

func TestParseMatchReturnBasic(t *testing.T) {
	stmt, err := Parse(`MATCH (a:Account) RETURN a`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Kind != StmtMatch {
		t.Fatalf("expected StmtMatch, got %v", stmt.Kind)
	}
	if len(stmt.Pattern.Paths) != 1 || len(stmt.Pattern.Paths[0].Elements) != 1 {
		t.Fatalf("expected a single one-node path, got %+v", stmt.Pattern)
	}
	node := stmt.Pattern.Paths[0].Elements[0].Node
	if node.Variable != "a" || node.Label.Kind != LabelName || node.Label.Name != "Account" {
		t.Fatalf("unexpected node pattern: %+v", node)
	}
	if len(stmt.Return) != 1 || stmt.Return[0].Expr.Variable != "a" {
		t.Fatalf("unexpected return items: %+v", stmt.Return)
	}
}

func TestParseIgnoresWhitespaceAndComments(t *testing.T) {
	plain := `MATCH (a:Account)-[:Transfer]->(b:Account) RETURN a, b`
	commented := "MATCH   (a:Account) // an account\n" +
		"-[:Transfer]->\n" +
		"/* to another */ (b:Account)\n" +
		"RETURN a,\tb"

	s1, err := Parse(plain)
	if err != nil {
		t.Fatalf("Parse(plain): %v", err)
	}
	s2, err := Parse(commented)
	if err != nil {
		t.Fatalf("Parse(commented): %v", err)
	}
	if len(s1.Pattern.Paths[0].Elements) != len(s2.Pattern.Paths[0].Elements) {
		t.Fatalf("expected identical element counts, got %d vs %d",
			len(s1.Pattern.Paths[0].Elements), len(s2.Pattern.Paths[0].Elements))
	}
	if len(s1.Return) != len(s2.Return) {
		t.Fatalf("expected identical return item counts, got %d vs %d", len(s1.Return), len(s2.Return))
	}
}

func TestParseEdgeDirections(t *testing.T) {
	cases := []struct {
		src  string
		want Direction
	}{
		{`MATCH (a)-[:Transfer]->(b) RETURN a`, Outgoing},
		{`MATCH (a)<-[:Transfer]-(b) RETURN a`, Incoming},
		{`MATCH (a)<-[:Transfer]->(b) RETURN a`, AnyDirection},
		{`MATCH (a)~[:Transfer]~(b) RETURN a`, Undirected},
	}
	for _, c := range cases {
		stmt, err := Parse(c.src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.src, err)
		}
		edge := stmt.Pattern.Paths[0].Elements[1].Edge
		if edge.Direction != c.want {
			t.Fatalf("Parse(%q): expected direction %v, got %v", c.src, c.want, edge.Direction)
		}
	}
}

func TestParseQuantifiers(t *testing.T) {
	cases := []struct {
		src  string
		want Quantifier
	}{
		{`MATCH (a)-[:Transfer]->*(b) RETURN a`, Quantifier{Min: 0, Max: -1}},
		{`MATCH (a)-[:Transfer]->+(b) RETURN a`, Quantifier{Min: 1, Max: -1}},
		{`MATCH (a)-[:Transfer]->?(b) RETURN a`, Quantifier{Min: 0, Max: 1}},
		{`MATCH (a)-[:Transfer]->{2,5}(b) RETURN a`, Quantifier{Min: 2, Max: 5}},
	}
	for _, c := range cases {
		stmt, err := Parse(c.src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.src, err)
		}
		edge := stmt.Pattern.Paths[0].Elements[1].Edge
		if edge.Quantifier == nil || *edge.Quantifier != c.want {
			t.Fatalf("Parse(%q): expected quantifier %+v, got %+v", c.src, c.want, edge.Quantifier)
		}
	}
}

func TestParseLabelExpressionPrecedence(t *testing.T) {
	// `|` is loosest: Account|Contract&!Account parses as Account | (Contract & !Account).
	stmt, err := Parse(`MATCH (a:Account|Contract&!Account) RETURN a`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	label := stmt.Pattern.Paths[0].Elements[0].Node.Label
	if label.Kind != LabelDisjunction || len(label.Operands) != 2 {
		t.Fatalf("expected a top-level disjunction, got %+v", label)
	}
	right := label.Operands[1]
	if right.Kind != LabelConjunction || len(right.Operands) != 2 {
		t.Fatalf("expected the right operand to be a conjunction, got %+v", right)
	}
	if right.Operands[1].Kind != LabelNegation {
		t.Fatalf("expected the conjunction's second operand to be a negation, got %+v", right.Operands[1])
	}
}

func TestParseUnknownLabelErrors(t *testing.T) {
	if _, err := Parse(`MATCH (a:NotARealLabel) RETURN a`); err == nil {
		t.Fatal("expected an error for an unknown label")
	}
}

func TestParseInsertPattern(t *testing.T) {
	stmt, err := Parse(`INSERT (a:Account {address: "0x00000000000000000000000000000000000001"})`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Kind != StmtInsert {
		t.Fatalf("expected StmtInsert, got %v", stmt.Kind)
	}
	node := stmt.InsertPattern.Paths[0].Elements[0].Node
	if node.Label.Name != "Account" {
		t.Fatalf("expected label Account, got %+v", node.Label)
	}
	if _, ok := node.Properties["address"]; !ok {
		t.Fatalf("expected an address property filter, got %+v", node.Properties)
	}
}

func TestParseCallWithYield(t *testing.T) {
	stmt, err := Parse(`CALL shortest_path(1, 2) YIELD path, length`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Kind != StmtCall || stmt.ProcName != "shortest_path" {
		t.Fatalf("unexpected call statement: %+v", stmt)
	}
	if len(stmt.Args) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(stmt.Args))
	}
	if len(stmt.Yield) != 2 || stmt.Yield[0] != "path" || stmt.Yield[1] != "length" {
		t.Fatalf("unexpected yield list: %v", stmt.Yield)
	}
}

func TestParseShowGraphsWithLike(t *testing.T) {
	stmt, err := Parse(`SHOW GRAPHS LIKE "chain%"`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Kind != StmtShow || stmt.ShowTarget != ShowGraphs {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
	if stmt.Like != "chain%" {
		t.Fatalf("expected LIKE pattern chain%%, got %q", stmt.Like)
	}
}

func TestParseShowMultiWordTarget(t *testing.T) {
	stmt, err := Parse(`SHOW EDGE TYPES`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.ShowTarget != ShowEdgeTypes {
		t.Fatalf("expected ShowEdgeTypes, got %v", stmt.ShowTarget)
	}
}

func TestParseCreateAndDropGraph(t *testing.T) {
	stmt, err := Parse(`CREATE GRAPH IF NOT EXISTS mainnet`)
	if err != nil {
		t.Fatalf("Parse(CREATE): %v", err)
	}
	if stmt.Kind != StmtCreateGraph || !stmt.IfNotExists || stmt.GraphName != "mainnet" {
		t.Fatalf("unexpected create statement: %+v", stmt)
	}

	stmt, err = Parse(`DROP GRAPH IF EXISTS mainnet`)
	if err != nil {
		t.Fatalf("Parse(DROP): %v", err)
	}
	if stmt.Kind != StmtDropGraph || !stmt.IfExists || stmt.GraphName != "mainnet" {
		t.Fatalf("unexpected drop statement: %+v", stmt)
	}
}

func TestParseRejectsTrailingInput(t *testing.T) {
	if _, err := Parse(`MATCH (a) RETURN a garbage`); err == nil {
		t.Fatal("expected an error for unexpected trailing input")
	}
}

func TestParseRejectsEmptyStatement(t *testing.T) {
	if _, err := Parse(``); err == nil {
		t.Fatal("expected an error for an empty statement")
	}
}
