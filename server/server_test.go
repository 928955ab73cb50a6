package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"chaingraphdb/core"
)

func newTestServer(t *testing.T) (*httptest.Server, *GraphService) {
	t.Helper()
	cat, err := core.OpenCatalog(t.TempDir(), core.GraphOptions{BufferPoolSize: 16})
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	t.Cleanup(func() { cat.CloseAll() })
	if _, err := cat.Create("default"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	metrics := core.NewMetrics(prometheus.NewRegistry())
	svc := NewGraphService(cat, metrics, "default")
	srv := NewServer("", svc)
	ts := httptest.NewServer(srv.router)
	t.Cleanup(ts.Close)
	return ts, svc
}

func TestHandleHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestHandleQueryInsertAndMatch(t *testing.T) {
	ts, _ := newTestServer(t)

	insert := queryRequest{Query: `INSERT (a:Account {address: "0x0000000000000000000000000000000000000001"})`}
	body, _ := json.Marshal(insert)
	resp, err := http.Post(ts.URL+"/query", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /query: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from INSERT, got %d", resp.StatusCode)
	}

	match := queryRequest{Query: `MATCH (a:Account) RETURN a`}
	body, _ = json.Marshal(match)
	resp, err = http.Post(ts.URL+"/query", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /query: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from MATCH, got %d", resp.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !env.Success {
		t.Fatalf("expected a successful response envelope, got %+v", env)
	}
}

func TestHandleVertexByIDNotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/vertices/999")
	if err != nil {
		t.Fatalf("GET /vertices/999: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for a nonexistent vertex, got %d", resp.StatusCode)
	}
}

func TestHandleVertexByIDInvalidID(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/vertices/not-a-number")
	if err != nil {
		t.Fatalf("GET /vertices/not-a-number: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed id, got %d", resp.StatusCode)
	}
}

func TestHandleStats(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatalf("GET /stats: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !env.Success {
		t.Fatalf("expected a successful stats response, got %+v", env)
	}
}

func TestHandleMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from the prometheus handler, got %d", resp.StatusCode)
	}
}
