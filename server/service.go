// Package server exposes a chaingraphdb catalog over HTTP, grounded on the
// teacher's cmd/explorer router/service/middleware split: a thin Server
// wraps a GraphService, which in turn wraps the catalog and executor.
package server

import (
	"time"

	log "github.com/sirupsen/logrus"

	"chaingraphdb/algo"
	"chaingraphdb/core"
	"chaingraphdb/gql"
)

// GraphService wraps a GraphCatalog with the query executor and metrics
// collector every HTTP handler needs, the way the teacher's LedgerService
// wraps a *core.Ledger for cmd/explorer's handlers.
type GraphService struct {
	Catalog *core.GraphCatalog
	Metrics *core.Metrics
	log     *log.Entry

	defaultGraph string
}

// NewGraphService builds a service bound to an already-open catalog.
func NewGraphService(cat *core.GraphCatalog, metrics *core.Metrics, defaultGraph string) *GraphService {
	return &GraphService{
		Catalog:      cat,
		Metrics:      metrics,
		log:          log.WithField("component", "server"),
		defaultGraph: defaultGraph,
	}
}

func (s *GraphService) graph(name string) (*core.Graph, error) {
	if name == "" {
		name = s.defaultGraph
	}
	return s.Catalog.Use(name)
}

// Query parses and executes a GQL statement against the named graph (or
// the service's default graph when name is empty).
func (s *GraphService) Query(name, src string) (*gql.QueryResult, error) {
	g, err := s.graph(name)
	if err != nil {
		return nil, err
	}
	stmt, err := gql.Parse(src)
	if err != nil {
		return nil, core.NewError(core.KindParseError, err.Error())
	}

	start := time.Now()
	ex := gql.NewExecutorWithCatalog(g, s.Catalog)
	result, execErr := ex.Execute(stmt, nil)
	if s.Metrics != nil {
		s.Metrics.ObserveQuery(time.Since(start).Seconds(), execErr)
		s.Metrics.SetGraphSize(g.VertexCount(), g.EdgeCount())
	}
	return result, execErr
}

// Vertex looks up one vertex by numeric id within the named graph.
func (s *GraphService) Vertex(name string, id uint64) (*core.Vertex, error) {
	g, err := s.graph(name)
	if err != nil {
		return nil, err
	}
	return g.Vertex(id)
}

// VertexByAddress looks up one vertex by its on-chain address.
func (s *GraphService) VertexByAddress(name, addrHex string) (*core.Vertex, error) {
	g, err := s.graph(name)
	if err != nil {
		return nil, err
	}
	addr, err := core.ParseAddress(addrHex)
	if err != nil {
		return nil, core.NewError(core.KindInvalidAddress, err.Error())
	}
	return g.VertexByAddress(addr)
}

// Edge looks up one edge by numeric id within the named graph.
func (s *GraphService) Edge(name string, id uint64) (*core.Edge, error) {
	g, err := s.graph(name)
	if err != nil {
		return nil, err
	}
	return g.Edge(id)
}

// Outgoing/Incoming resolve every edge touching a vertex, hydrated into
// full Edge records for the /vertices/{id}/outgoing|incoming endpoints.
func (s *GraphService) Outgoing(name string, id uint64) ([]*core.Edge, error) {
	return s.adjacentEdges(name, id, true)
}

func (s *GraphService) Incoming(name string, id uint64) ([]*core.Edge, error) {
	return s.adjacentEdges(name, id, false)
}

func (s *GraphService) adjacentEdges(name string, id uint64, outgoing bool) ([]*core.Edge, error) {
	g, err := s.graph(name)
	if err != nil {
		return nil, err
	}
	eidx := g.EdgeIndexView()
	var ids []uint64
	if outgoing {
		ids = eidx.Outgoing(id)
	} else {
		ids = eidx.Incoming(id)
	}
	edges := make([]*core.Edge, 0, len(ids))
	for _, eid := range ids {
		e, err := g.Edge(eid)
		if err != nil {
			continue
		}
		edges = append(edges, e)
	}
	return edges, nil
}

// Stats reports graph-level counters plus the process buffer-pool
// snapshot, for the /stats endpoint.
type Stats struct {
	Name          string              `json:"name"`
	VertexCount   int                 `json:"vertex_count"`
	EdgeCount     int                 `json:"edge_count"`
	BufferPool    core.MetricsSnapshot `json:"buffer_pool"`
}

func (s *GraphService) Stats(name string) (*Stats, error) {
	g, err := s.graph(name)
	if err != nil {
		return nil, err
	}
	st := &Stats{Name: g.Name, VertexCount: g.VertexCount(), EdgeCount: g.EdgeCount()}
	if s.Metrics != nil {
		st.BufferPool = s.Metrics.Snapshot()
	}
	return st, nil
}

// ShortestPath/AllPaths/MaxFlow/Trace dispatch into the algo package over
// the named graph's view, backing the /algorithm/* endpoints.
func (s *GraphService) ShortestPath(name string, src, dst uint64) (*algo.Path, error) {
	g, err := s.graph(name)
	if err != nil {
		return nil, err
	}
	p := algo.ShortestPathWeighted(algo.NewGraphView(g), src, dst)
	if p == nil {
		return nil, core.NewError(core.KindNotFound, "no path found")
	}
	return p, nil
}

func (s *GraphService) AllPaths(name string, src, dst uint64, maxDepth int) ([]*algo.Path, error) {
	g, err := s.graph(name)
	if err != nil {
		return nil, err
	}
	return algo.AllPaths(algo.NewGraphView(g), src, dst, maxDepth), nil
}

func (s *GraphService) MaxFlow(name string, src, dst uint64) (*algo.MaxFlowResult, error) {
	g, err := s.graph(name)
	if err != nil {
		return nil, err
	}
	return algo.MaxFlow(algo.NewGraphView(g), src, dst), nil
}

func (s *GraphService) Trace(name string, start uint64, dir algo.TraceDirection, depth int) ([]*algo.Path, error) {
	g, err := s.graph(name)
	if err != nil {
		return nil, err
	}
	return algo.Trace(algo.NewGraphView(g), start, dir, depth, nil), nil
}
