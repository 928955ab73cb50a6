package core

import "testing"

func openTestGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := Open(t.TempDir(), GraphOptions{Name: "t", BufferPoolSize: 16})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestGraphAddVertexAndEdge(t *testing.T) {
	g := openTestGraph(t)

	a, err := g.AddAccount(Address{0x01}, nil)
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	b, err := g.AddAccount(Address{0x02}, nil)
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}

	e, err := g.AddTransfer(a.ID, b.ID, TokenAmountFromUint64(500), 10, Hash{0xAB})
	if err != nil {
		t.Fatalf("AddTransfer: %v", err)
	}

	if g.VertexCount() != 2 {
		t.Fatalf("expected 2 vertices, got %d", g.VertexCount())
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge, got %d", g.EdgeCount())
	}

	got, err := g.Edge(e.ID)
	if err != nil {
		t.Fatalf("Edge: %v", err)
	}
	if got.Src != a.ID || got.Dst != b.ID {
		t.Fatalf("edge endpoints mismatch: got src=%d dst=%d", got.Src, got.Dst)
	}
}

func TestGraphAddEdgeRejectsUnknownEndpoints(t *testing.T) {
	g := openTestGraph(t)
	if _, err := g.AddEdge(LabelTransfer, 1, 2, nil); err == nil {
		t.Fatal("expected an error adding an edge between nonexistent vertices")
	}
}

func TestGraphVertexByAddress(t *testing.T) {
	g := openTestGraph(t)
	addr := Address{0x0A, 0x0B}
	v, err := g.AddAccount(addr, nil)
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	got, err := g.VertexByAddress(addr)
	if err != nil {
		t.Fatalf("VertexByAddress: %v", err)
	}
	if got.ID != v.ID {
		t.Fatalf("expected vertex id %d, got %d", v.ID, got.ID)
	}
}

func TestGraphRestartDurability(t *testing.T) {
	dir := t.TempDir()

	g, err := Open(dir, GraphOptions{Name: "t", BufferPoolSize: 16})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	a, err := g.AddAccount(Address{0x01}, nil)
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	b, err := g.AddAccount(Address{0x02}, nil)
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	if _, err := g.AddTransfer(a.ID, b.ID, TokenAmountFromUint64(42), 1, Hash{}); err != nil {
		t.Fatalf("AddTransfer: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(dir, GraphOptions{Name: "t", BufferPoolSize: 16})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if reopened.VertexCount() != 2 {
		t.Fatalf("expected 2 vertices after restart, got %d", reopened.VertexCount())
	}
	if reopened.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge after restart, got %d", reopened.EdgeCount())
	}
	got, err := reopened.VertexByAddress(Address{0x01})
	if err != nil {
		t.Fatalf("VertexByAddress after restart: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("expected vertex id %d to survive restart, got %d", a.ID, got.ID)
	}
}
