// Package httpapi exposes the judge service over HTTP: GET /status
// and the /judge, /run, /judge/batch, /run/batch, /judge/long-batch,
// /run/long-batch endpoints from spec.md §6. Every handled submission
// returns HTTP 200; 4xx is reserved for malformed requests.
package httpapi

import (
	"context"

	"codejudge/internal/model"

	"github.com/gin-gonic/gin"
)

// Pool is the subset of worker.Pool a handler needs.
type Pool interface {
	Submit(ctx context.Context, sub model.Submission, includeStdout bool) model.Verdict
	Status() model.StatusResponse
}

// Orchestrator is the subset of batch.Orchestrator a handler needs.
type Orchestrator interface {
	Run(ctx context.Context, submissions []model.Submission, includeStdout, long bool) model.BatchResponse
}

// Server holds the handlers' dependencies: the short-batch pool and
// the batch orchestrator built over the short- and long-batch pools.
// An unsupported submission type is not validated here — it flows
// through to the worker pool and comes back as a sandbox_error
// verdict, same as any other submission-level failure.
type Server struct {
	shortPool Pool
	orch      Orchestrator
}

// NewServer builds a Server.
func NewServer(shortPool Pool, orch Orchestrator) *Server {
	return &Server{shortPool: shortPool, orch: orch}
}

// Router builds the gin engine with logging/recovery middleware and
// every route wired to its handler.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(TraceContext(), RequestLogger(), Recovery())

	r.GET("/status", s.handleStatus)
	r.POST("/judge", s.handleSingle(false))
	r.POST("/run", s.handleSingle(true))
	r.POST("/judge/batch", s.handleBatch(false, false))
	r.POST("/run/batch", s.handleBatch(true, false))
	r.POST("/judge/long-batch", s.handleBatch(false, true))
	r.POST("/run/long-batch", s.handleBatch(true, true))

	return r
}
