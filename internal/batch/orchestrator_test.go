package batch

import (
	"context"
	"testing"

	"codejudge/internal/model"
)

type fakePool struct {
	long    bool
	panicAt int
	calls   []string
}

func (p *fakePool) Submit(ctx context.Context, sub model.Submission, includeStdout bool) model.Verdict {
	p.calls = append(p.calls, sub.Solution)
	if p.panicAt >= 0 && sub.Solution == "panic" {
		panic("boom")
	}
	return model.Verdict{RunSuccess: true, Success: true, Stdout: sub.Solution}
}

func TestOrchestratorPreservesOrder(t *testing.T) {
	short := &fakePool{panicAt: -1}
	long := &fakePool{panicAt: -1}
	orch := New(short, long)

	subs := []model.Submission{
		{Solution: "a"}, {Solution: "b"}, {Solution: "c"},
	}
	resp := orch.Run(context.Background(), subs, true, false)
	if len(resp.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(resp.Results))
	}
	for i, want := range []string{"a", "b", "c"} {
		if resp.Results[i].Stdout != want {
			t.Fatalf("result %d: expected %q, got %q", i, want, resp.Results[i].Stdout)
		}
	}
}

func TestOrchestratorIsolatesPanic(t *testing.T) {
	short := &fakePool{panicAt: 0}
	long := &fakePool{panicAt: -1}
	orch := New(short, long)

	subs := []model.Submission{
		{Solution: "a"}, {Solution: "panic"}, {Solution: "c"},
	}
	resp := orch.Run(context.Background(), subs, true, false)
	if resp.Results[1].Reason != model.ReasonSandboxError {
		t.Fatalf("expected sandbox_error for panicking submission, got %+v", resp.Results[1])
	}
	if resp.Results[0].Stdout != "a" || resp.Results[2].Stdout != "c" {
		t.Fatalf("expected siblings unaffected, got %+v", resp.Results)
	}
}

func TestOrchestratorRoutesLongBatchesToLongPool(t *testing.T) {
	short := &fakePool{panicAt: -1}
	long := &fakePool{panicAt: -1}
	orch := New(short, long)

	orch.Run(context.Background(), []model.Submission{{Solution: "x"}}, true, true)
	if len(long.calls) != 1 || len(short.calls) != 0 {
		t.Fatalf("expected long batch routed to long pool, short=%v long=%v", short.calls, long.calls)
	}
}
