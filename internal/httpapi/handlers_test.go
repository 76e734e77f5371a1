package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codejudge/internal/model"

	"github.com/gin-gonic/gin"
)

type fakePool struct {
	verdict model.Verdict
	status  model.StatusResponse
	lastSub model.Submission
}

func (p *fakePool) Submit(ctx context.Context, sub model.Submission, includeStdout bool) model.Verdict {
	p.lastSub = sub
	return p.verdict
}

func (p *fakePool) Status() model.StatusResponse { return p.status }

type fakeOrchestrator struct {
	resp model.BatchResponse
}

func (o *fakeOrchestrator) Run(ctx context.Context, submissions []model.Submission, includeStdout, long bool) model.BatchResponse {
	return o.resp
}

func newTestServer(pool *fakePool, orch *fakeOrchestrator) *Server {
	gin.SetMode(gin.TestMode)
	return NewServer(pool, orch)
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleStatus(t *testing.T) {
	pool := &fakePool{status: model.StatusResponse{Queue: 2, NumWorkers: 4}}
	srv := newTestServer(pool, &fakeOrchestrator{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got model.StatusResponse
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Queue != 2 || got.NumWorkers != 4 {
		t.Fatalf("unexpected status body: %+v", got)
	}
}

func TestHandleJudgePassesUnsupportedTypeThroughToPool(t *testing.T) {
	// An unsupported type is not a malformed request: it reaches the
	// pool like any other submission. The pool (runner.Execute in
	// production) is what turns it into a sandbox_error verdict.
	pool := &fakePool{verdict: model.Verdict{RunSuccess: false, Success: false, Reason: model.ReasonSandboxError}}
	srv := newTestServer(pool, &fakeOrchestrator{})
	rec := doJSON(srv.Router(), http.MethodPost, "/judge", model.Submission{Type: "cobol", Solution: "x"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 even for an unsupported type, got %d: %s", rec.Code, rec.Body.String())
	}
	var v model.Verdict
	json.Unmarshal(rec.Body.Bytes(), &v)
	if v.Reason != model.ReasonSandboxError {
		t.Fatalf("expected sandbox_error reason, got %+v", v)
	}
	if pool.lastSub.Type != "cobol" {
		t.Fatalf("expected the unsupported submission to reach the pool, got %+v", pool.lastSub)
	}
}

func TestHandleJudgeHappyPath(t *testing.T) {
	cost := 0.05
	pool := &fakePool{verdict: model.Verdict{RunSuccess: true, Success: true, Cost: &cost}}
	srv := newTestServer(pool, &fakeOrchestrator{})
	rec := doJSON(srv.Router(), http.MethodPost, "/judge", model.Submission{Type: "cpp", Solution: "int main(){}"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var v model.Verdict
	json.Unmarshal(rec.Body.Bytes(), &v)
	if !v.Success {
		t.Fatalf("expected success verdict, got %+v", v)
	}
	if pool.lastSub.Type != "cpp" {
		t.Fatalf("expected submission routed to pool, got %+v", pool.lastSub)
	}
}

func TestHandleRunIncludesStdoutPath(t *testing.T) {
	var capturedIncludeStdout bool
	pool := &fakePoolCapture{capture: &capturedIncludeStdout}
	srv := newTestServer2(pool, &fakeOrchestrator{})
	rec := doJSON(srv.Router(), http.MethodPost, "/run", model.Submission{Type: "python", Solution: "print(1)"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !capturedIncludeStdout {
		t.Fatal("expected /run to pass includeStdout=true through to the pool")
	}
}

type fakePoolCapture struct {
	capture *bool
}

func (p *fakePoolCapture) Submit(ctx context.Context, sub model.Submission, includeStdout bool) model.Verdict {
	*p.capture = includeStdout
	return model.Verdict{RunSuccess: true, Success: true}
}

func (p *fakePoolCapture) Status() model.StatusResponse { return model.StatusResponse{} }

func newTestServer2(pool Pool, orch Orchestrator) *Server {
	gin.SetMode(gin.TestMode)
	return NewServer(pool, orch)
}

func TestHandleBatchRejectsWrongEnvelopeType(t *testing.T) {
	pool := &fakePool{}
	srv := newTestServer(pool, &fakeOrchestrator{})
	rec := doJSON(srv.Router(), http.MethodPost, "/judge/batch", model.BatchRequest{
		Type:        "single",
		Submissions: []model.Submission{{Type: "cpp", Solution: "x"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong batch envelope type, got %d", rec.Code)
	}
}

func TestHandleBatchToleratesUnsupportedSubmissionInSlot(t *testing.T) {
	// One submission with an unsupported type must not cancel the
	// whole batch — it still returns exactly K verdicts, in order,
	// with that slot carrying sandbox_error (spec.md §4.4, §8).
	orch := &fakeOrchestrator{resp: model.BatchResponse{Results: []model.Verdict{
		{RunSuccess: true, Success: true},
		{RunSuccess: false, Success: false, Reason: model.ReasonSandboxError},
	}}}
	srv := newTestServer(&fakePool{}, orch)
	rec := doJSON(srv.Router(), http.MethodPost, "/run/batch", model.BatchRequest{
		Type: "batch",
		Submissions: []model.Submission{
			{Type: "cpp", Solution: "x"},
			{Type: "cobol", Solution: "y"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a batch containing an unsupported type, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp model.BatchResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 verdicts preserving input order, got %d", len(resp.Results))
	}
	if resp.Results[1].Reason != model.ReasonSandboxError {
		t.Fatalf("expected sandbox_error for the unsupported submission's slot, got %+v", resp.Results[1])
	}
}

func TestHandleBatchHappyPath(t *testing.T) {
	orch := &fakeOrchestrator{resp: model.BatchResponse{Results: []model.Verdict{
		{RunSuccess: true, Success: true},
		{RunSuccess: true, Success: false, Reason: model.ReasonRuntimeError},
	}}}
	srv := newTestServer(&fakePool{}, orch)
	rec := doJSON(srv.Router(), http.MethodPost, "/judge/batch", model.BatchRequest{
		Type: "batch",
		Submissions: []model.Submission{
			{Type: "cpp", Solution: "a"},
			{Type: "python", Solution: "b"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp model.BatchResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
}

func TestHandleLongBatchRoutesThroughOrchestrator(t *testing.T) {
	orch := &fakeOrchestrator{resp: model.BatchResponse{Results: []model.Verdict{{RunSuccess: true, Success: true}}}}
	srv := newTestServer(&fakePool{}, orch)
	rec := doJSON(srv.Router(), http.MethodPost, "/judge/long-batch", model.BatchRequest{
		Type:        "batch",
		Submissions: []model.Submission{{Type: "lean", Solution: "theorem t : 1 = 1 := rfl"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
