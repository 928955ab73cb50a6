package importer

import (
	"strings"
	"testing"

	"chaingraphdb/core"
)

func openTestGraph(t *testing.T) *core.Graph {
	t.Helper()
	g, err := core.Open(t.TempDir(), core.GraphOptions{Name: "t", BufferPoolSize: 16})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

const addr1 = "0x0000000000000000000000000000000000000001"
const addr2 = "0x0000000000000000000000000000000000000002"

func TestImportVerticesCSV(t *testing.T) {
	g := openTestGraph(t)
	im := New(g, Options{})

	csv := "label,address,deployer,name\n" +
		"Account," + addr1 + ",,alice\n" +
		"Contract," + addr2 + "," + addr1 + ",token\n"

	stats, err := im.ImportVerticesCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportVerticesCSV: %v", err)
	}
	if stats.VerticesImported != 2 || stats.RowsFailed != 0 {
		t.Fatalf("expected 2 imported, 0 failed, got %+v", stats)
	}
	if g.VertexCount() != 2 {
		t.Fatalf("expected 2 vertices in the graph, got %d", g.VertexCount())
	}

	a, err := core.ParseAddress(addr1)
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	v, err := g.VertexByAddress(a)
	if err != nil {
		t.Fatalf("VertexByAddress: %v", err)
	}
	if v.Properties["name"].StringV != "alice" {
		t.Fatalf("expected imported property name=alice, got %+v", v.Properties["name"])
	}
}

func TestImportVerticesJSONL(t *testing.T) {
	g := openTestGraph(t)
	im := New(g, Options{})

	jsonl := `{"label":"Account","address":"` + addr1 + `","properties":{"tag":"whale"}}` + "\n" +
		`{"label":"Account","address":"` + addr2 + `"}` + "\n"

	stats, err := im.ImportVerticesJSONL(strings.NewReader(jsonl))
	if err != nil {
		t.Fatalf("ImportVerticesJSONL: %v", err)
	}
	if stats.VerticesImported != 2 {
		t.Fatalf("expected 2 vertices imported, got %d", stats.VerticesImported)
	}
}

func TestImportVerticesCSVMalformedAddressFails(t *testing.T) {
	g := openTestGraph(t)
	im := New(g, Options{})

	csv := "label,address\n" +
		"Account,not-a-valid-address\n" +
		"Account," + addr1 + "\n"

	stats, err := im.ImportVerticesCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportVerticesCSV: %v", err)
	}
	if stats.VerticesImported != 1 || stats.RowsFailed != 1 {
		t.Fatalf("expected 1 imported and 1 failed row, got %+v", stats)
	}
}

func TestImportEdgesCSVResolvesByAddress(t *testing.T) {
	g := openTestGraph(t)
	im := New(g, Options{})

	vcsv := "label,address\n" +
		"Account," + addr1 + "\n" +
		"Account," + addr2 + "\n"
	if _, err := im.ImportVerticesCSV(strings.NewReader(vcsv)); err != nil {
		t.Fatalf("ImportVerticesCSV: %v", err)
	}

	ecsv := "label,src_address,dst_address,amount,block_number\n" +
		"Transfer," + addr1 + "," + addr2 + ",500,42\n"
	stats, err := im.ImportEdgesCSV(strings.NewReader(ecsv))
	if err != nil {
		t.Fatalf("ImportEdgesCSV: %v", err)
	}
	if stats.EdgesImported != 1 || stats.RowsFailed != 0 {
		t.Fatalf("expected 1 imported edge, got %+v", stats)
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge in the graph, got %d", g.EdgeCount())
	}
}

func TestImportEdgesCSVUnknownAddressFails(t *testing.T) {
	g := openTestGraph(t)
	im := New(g, Options{})

	ecsv := "label,src_address,dst_address,amount\n" +
		"Transfer," + addr1 + "," + addr2 + ",1\n"
	stats, err := im.ImportEdgesCSV(strings.NewReader(ecsv))
	if err != nil {
		t.Fatalf("ImportEdgesCSV: %v", err)
	}
	if stats.EdgesImported != 0 || stats.RowsFailed != 1 {
		t.Fatalf("expected the edge to fail against a graph with no vertices, got %+v", stats)
	}
}

func TestImportVerticesParallelMatchesSequentialCount(t *testing.T) {
	var rows strings.Builder
	rows.WriteString("label,address\n")
	addrs := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		a := addrForIndex(i)
		addrs = append(addrs, a)
		rows.WriteString("Account," + a + "\n")
	}
	csvData := rows.String()

	seq := openTestGraph(t)
	seqStats, err := New(seq, Options{Parallel: false}).ImportVerticesCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("sequential import: %v", err)
	}

	par := openTestGraph(t)
	parStats, err := New(par, Options{Parallel: true, NumWorkers: 4}).ImportVerticesCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("parallel import: %v", err)
	}

	if seqStats.VerticesImported != parStats.VerticesImported {
		t.Fatalf("expected matching imported counts, sequential=%d parallel=%d",
			seqStats.VerticesImported, parStats.VerticesImported)
	}
	if par.VertexCount() != int(parStats.VerticesImported) {
		t.Fatalf("expected the parallel graph's vertex count to match the reported stats, got %d vertices vs %d imported",
			par.VertexCount(), parStats.VerticesImported)
	}
}

// addrForIndex builds a distinct 40-hex-char address for index i.
func addrForIndex(i int) string {
	suffix := uitoaHex(i)
	pad := strings.Repeat("0", 40-len(suffix))
	return "0x" + pad + suffix
}

func uitoaHex(i int) string {
	const digits = "0123456789abcdef"
	if i == 0 {
		return "0"
	}
	var buf [16]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = digits[i%16]
		i /= 16
	}
	return string(buf[pos:])
}
