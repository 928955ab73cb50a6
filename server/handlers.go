package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"chaingraphdb/algo"
	"chaingraphdb/core"
)

func graphParam(r *http.Request) string {
	return r.URL.Query().Get("graph")
}

func idParam(r *http.Request, name string) (uint64, error) {
	s := chi.URLParam(r, name)
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, core.NewError(core.KindQueryError, "invalid id: "+s)
	}
	return id, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Stats(graphParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type queryRequest struct {
	Query string `json:"query"`
	Graph string `json:"graph,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.NewError(core.KindQueryError, "malformed request body: "+err.Error()))
		return
	}
	graph := req.Graph
	if graph == "" {
		graph = graphParam(r)
	}
	result, err := s.svc.Query(graph, req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleVertexByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := s.svc.Vertex(graphParam(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleVertexByAddress(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "addr")
	v, err := s.svc.VertexByAddress(graphParam(r), addr)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleEdgeByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := s.svc.Edge(graphParam(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleOutgoing(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	edges, err := s.svc.Outgoing(graphParam(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, edges)
}

func (s *Server) handleIncoming(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	edges, err := s.svc.Incoming(graphParam(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, edges)
}

type pairRequest struct {
	Src   uint64 `json:"src"`
	Dst   uint64 `json:"dst"`
	Graph string `json:"graph,omitempty"`
	Depth int    `json:"max_depth,omitempty"`
}

func (s *Server) handleShortestPath(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.NewError(core.KindQueryError, "malformed request body: "+err.Error()))
		return
	}
	p, err := s.svc.ShortestPath(req.Graph, req.Src, req.Dst)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAllPaths(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.NewError(core.KindQueryError, "malformed request body: "+err.Error()))
		return
	}
	if req.Depth <= 0 {
		req.Depth = 10
	}
	paths, err := s.svc.AllPaths(req.Graph, req.Src, req.Dst, req.Depth)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paths)
}

func (s *Server) handleMaxFlow(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.NewError(core.KindQueryError, "malformed request body: "+err.Error()))
		return
	}
	res, err := s.svc.MaxFlow(req.Graph, req.Src, req.Dst)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type traceRequest struct {
	Start     uint64 `json:"start"`
	Direction string `json:"direction,omitempty"`
	Depth     int    `json:"depth,omitempty"`
	Graph     string `json:"graph,omitempty"`
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	var req traceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.NewError(core.KindQueryError, "malformed request body: "+err.Error()))
		return
	}
	dir := algo.TraceForward
	if req.Direction == "backward" {
		dir = algo.TraceBackward
	}
	if req.Depth <= 0 {
		req.Depth = 10
	}
	paths, err := s.svc.Trace(req.Graph, req.Start, dir, req.Depth)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paths)
}
