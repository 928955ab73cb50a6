package gql

import (
	"testing"

	"chaingraphdb/core"
)

func openTestExecutor(t *testing.T) *Executor {
	t.Helper()
	g, err := core.Open(t.TempDir(), core.GraphOptions{Name: "t", BufferPoolSize: 16})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return NewExecutor(g)
}

func mustExec(t *testing.T, ex *Executor, src string) *QueryResult {
	t.Helper()
	stmt, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	res, err := ex.Execute(stmt, nil)
	if err != nil {
		t.Fatalf("Execute(%q): %v", src, err)
	}
	return res
}

func TestExecInsertAndMatchRoundTrip(t *testing.T) {
	ex := openTestExecutor(t)

	mustExec(t, ex, `INSERT (a:Account {address: "0x0000000000000000000000000000000000000001"})`)
	mustExec(t, ex, `INSERT (b:Account {address: "0x0000000000000000000000000000000000000002"})`)
	mustExec(t, ex, `INSERT (a:Account {address: "0x0000000000000000000000000000000000000001"})-[:Transfer {amount: 100}]->(b:Account {address: "0x0000000000000000000000000000000000000002"})`)

	if ex.Graph.VertexCount() != 2 {
		t.Fatalf("expected 2 vertices, got %d", ex.Graph.VertexCount())
	}
	if ex.Graph.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge, got %d", ex.Graph.EdgeCount())
	}

	res := mustExec(t, ex, `MATCH (a:Account)-[:Transfer]->(b:Account) RETURN a, b`)
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 matching row, got %d: %+v", len(res.Rows), res.Rows)
	}
	if res.Rows[0][0].Kind != ResultVertex || res.Rows[0][1].Kind != ResultVertex {
		t.Fatalf("expected both columns to be vertices, got %+v", res.Rows[0])
	}
}

func TestExecInsertDedupesExistingAddress(t *testing.T) {
	ex := openTestExecutor(t)
	mustExec(t, ex, `INSERT (a:Account {address: "0x0000000000000000000000000000000000000001"})`)
	mustExec(t, ex, `INSERT (a:Account {address: "0x0000000000000000000000000000000000000001"})`)
	if ex.Graph.VertexCount() != 1 {
		t.Fatalf("expected inserting the same address twice to dedupe to 1 vertex, got %d", ex.Graph.VertexCount())
	}
}

func TestExecMatchWhereFiltersBindings(t *testing.T) {
	ex := openTestExecutor(t)
	mustExec(t, ex, `INSERT (a:Account {tag: "whale"})`)
	mustExec(t, ex, `INSERT (a:Account {tag: "minnow"})`)

	res := mustExec(t, ex, `MATCH (a:Account) WHERE a.tag = "whale" RETURN a`)
	if len(res.Rows) != 1 {
		t.Fatalf("expected exactly 1 row after the WHERE filter, got %d", len(res.Rows))
	}
}

func TestExecMatchLimitAndSkip(t *testing.T) {
	ex := openTestExecutor(t)
	for i := 1; i <= 3; i++ {
		stmt, err := Parse(`INSERT (a:Account)`)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if _, err := ex.Execute(stmt, nil); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}
	res := mustExec(t, ex, `MATCH (a:Account) RETURN a SKIP 1 LIMIT 1`)
	if len(res.Rows) != 1 {
		t.Fatalf("expected SKIP 1 LIMIT 1 to return exactly 1 row, got %d", len(res.Rows))
	}
}

func TestExecCallDegreeProcedure(t *testing.T) {
	ex := openTestExecutor(t)
	mustExec(t, ex, `INSERT (a:Account {address: "0x0000000000000000000000000000000000000001"})`)
	mustExec(t, ex, `INSERT (b:Account {address: "0x0000000000000000000000000000000000000002"})`)
	mustExec(t, ex, `INSERT (a:Account {address: "0x0000000000000000000000000000000000000001"})-[:Transfer {amount: 10}]->(b:Account {address: "0x0000000000000000000000000000000000000002"})`)

	res := mustExec(t, ex, `CALL degree(1)`)
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row from degree(), got %d", len(res.Rows))
	}
	total := res.Rows[0][3].Scalar.IntV
	if total != 1 {
		t.Fatalf("expected vertex 1 to have total degree 1, got %d", total)
	}
}

func TestExecCallUnknownProcedureErrors(t *testing.T) {
	ex := openTestExecutor(t)
	stmt, err := Parse(`CALL not_a_real_procedure(1)`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := ex.Execute(stmt, nil); err == nil {
		t.Fatal("expected an error calling an unknown procedure")
	}
}

func TestExecCatalogCreateUseShowDrop(t *testing.T) {
	cat, err := core.OpenCatalog(t.TempDir(), core.GraphOptions{BufferPoolSize: 16})
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	t.Cleanup(func() { cat.CloseAll() })

	g, err := cat.Create("default")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ex := NewExecutorWithCatalog(g, cat)

	mustExec(t, ex, `CREATE GRAPH mainnet`)

	res := mustExec(t, ex, `SHOW GRAPHS`)
	found := false
	for _, row := range res.Rows {
		if row[0].Scalar.StringV == "mainnet" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected SHOW GRAPHS to list the newly created graph, got %+v", res.Rows)
	}

	mustExec(t, ex, `USE mainnet`)
	if ex.Graph == g {
		t.Fatal("expected USE to rebind the executor's graph")
	}

	mustExec(t, ex, `DROP GRAPH IF EXISTS mainnet`)
	res = mustExec(t, ex, `SHOW GRAPHS`)
	for _, row := range res.Rows {
		if row[0].Scalar.StringV == "mainnet" {
			t.Fatalf("expected mainnet to be dropped, but SHOW GRAPHS still lists it")
		}
	}
}

func TestExecSetAndRemoveProperty(t *testing.T) {
	ex := openTestExecutor(t)
	res := mustExec(t, ex, `INSERT (a:Account {address: "0x0000000000000000000000000000000000000001"})`)
	id := res.Rows[0][0].Vertex.ID

	// SET/REMOVE target standalone statements by numeric vertex id
	// (parseVarAsID), which the identifier grammar can't spell directly, so
	// the statements are built directly here rather than through Parse.
	setStmt := &Statement{Kind: StmtSet, SetItems: []SetItem{
		{Variable: uitoa(id), Property: "label", Value: Expression{Kind: ExprString, StringV: "whale"}},
	}}
	if _, err := ex.Execute(setStmt, nil); err != nil {
		t.Fatalf("Execute(SET): %v", err)
	}
	v, err := ex.Graph.Vertex(id)
	if err != nil {
		t.Fatalf("Vertex: %v", err)
	}
	if v.Properties["label"].StringV != "whale" {
		t.Fatalf("expected SET to assign label=whale, got %+v", v.Properties["label"])
	}

	removeStmt := &Statement{Kind: StmtRemove, RemoveItems: []SetItem{
		{Variable: uitoa(id), Property: "label"},
	}}
	if _, err := ex.Execute(removeStmt, nil); err != nil {
		t.Fatalf("Execute(REMOVE): %v", err)
	}
	v, err = ex.Graph.Vertex(id)
	if err != nil {
		t.Fatalf("Vertex: %v", err)
	}
	if v.Properties["label"].Tag != core.TagNull {
		t.Fatalf("expected REMOVE to null out the property, got %+v", v.Properties["label"])
	}
}
