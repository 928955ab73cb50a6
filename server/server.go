package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP frontend onto a GraphService, grounded on the
// teacher's cmd/explorer NewServer(addr)+routes()+Start() shape, adapted
// from gorilla/mux to the go-chi/chi/v5 router already used elsewhere in
// the corpus.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	svc        *GraphService
}

// NewServer constructs the router and binds it to addr.
func NewServer(addr string, svc *GraphService) *Server {
	s := &Server{router: chi.NewRouter(), svc: svc}
	s.routes()
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}
	return s
}

func (s *Server) routes() {
	s.router.Use(recoverMiddleware)
	s.router.Use(loggingMiddleware)

	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/stats", s.handleStats)

	s.router.Post("/query", s.handleQuery)

	s.router.Get("/vertices/{id}", s.handleVertexByID)
	s.router.Get("/vertices/address/{addr}", s.handleVertexByAddress)
	s.router.Get("/vertices/{id}/outgoing", s.handleOutgoing)
	s.router.Get("/vertices/{id}/incoming", s.handleIncoming)
	s.router.Get("/edges/{id}", s.handleEdgeByID)

	s.router.Post("/algorithm/shortest-path", s.handleShortestPath)
	s.router.Post("/algorithm/all-paths", s.handleAllPaths)
	s.router.Post("/algorithm/max-flow", s.handleMaxFlow)
	s.router.Post("/algorithm/trace", s.handleTrace)
}

// Start blocks serving HTTP until the server is shut down or fails.
func (s *Server) Start() error {
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server, then flushes every open graph in
// its catalog.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	return s.svc.Catalog.CloseAll()
}
