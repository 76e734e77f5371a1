package httpapi

import (
	"net/http"

	"codejudge/internal/model"
	"codejudge/pkg/apperr"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.shortPool.Status())
}

// handleSingle judges or runs exactly one submission. includeStdout
// is false for /judge, whose verdicts never carry stdout, and true for
// /run. An unsupported submission
// type is not a malformed request — it reaches the worker pool like
// any other submission and comes back as a sandbox_error verdict via
// runner.Execute's own registry lookup (spec.md §4.2, §6).
func (s *Server) handleSingle(includeStdout bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sub model.Submission
		if err := c.ShouldBindJSON(&sub); err != nil {
			writeError(c, apperr.Wrap(err, apperr.InvalidParams))
			return
		}

		verdict := s.shortPool.Submit(c.Request.Context(), sub, includeStdout)
		c.JSON(http.StatusOK, verdict)
	}
}

// handleBatch judges or runs every submission in a batch request
// through either the short- or long-batch pool. Per-submission type
// validity is left to the orchestrator/runner, same as handleSingle —
// one bad type must not cancel the whole batch (spec.md §4.4, §8).
func (s *Server) handleBatch(includeStdout, long bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperr.Wrap(err, apperr.InvalidParams))
			return
		}
		if req.Type != "batch" {
			writeError(c, apperr.New(apperr.InvalidParams).WithDetail("type", req.Type))
			return
		}

		resp := s.orch.Run(c.Request.Context(), req.Submissions, includeStdout, long)
		c.JSON(http.StatusOK, resp)
	}
}

func writeError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	c.JSON(code.HTTPStatus(), gin.H{"error": err.Error(), "code": int(code)})
}
