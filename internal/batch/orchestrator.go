// Package batch fans a batch request out across per-submission
// workers and gathers results back in request order, isolating any
// one submission's worker-internal failure from its siblings.
package batch

import (
	"context"
	"sync"

	"codejudge/internal/model"
)

// Pool is the subset of worker.Pool the orchestrator depends on.
type Pool interface {
	Submit(ctx context.Context, sub model.Submission, includeStdout bool) model.Verdict
}

// Orchestrator routes a batch to the short-batch pool (shared with
// single-submission traffic) or the long-batch pool (a separate pool,
// so long jobs do not queue behind short ones; its submissions get the
// same limits as the short pool's), per spec.md §4.4.
type Orchestrator struct {
	shortPool Pool
	longPool  Pool
}

// New builds an Orchestrator over the short- and long-batch pools.
func New(shortPool, longPool Pool) *Orchestrator {
	return &Orchestrator{shortPool: shortPool, longPool: longPool}
}

// Run executes every submission in the batch concurrently and returns
// exactly len(submissions) verdicts, in the original order. A panic
// inside one submission's goroutine is contained to that slot as
// sandbox_error rather than losing the whole batch.
func (o *Orchestrator) Run(ctx context.Context, submissions []model.Submission, includeStdout, long bool) model.BatchResponse {
	pool := o.shortPool
	if long {
		pool = o.longPool
	}

	results := make([]model.Verdict, len(submissions))
	var wg sync.WaitGroup
	for i, sub := range submissions {
		wg.Add(1)
		go func(i int, sub model.Submission) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = model.Verdict{RunSuccess: false, Success: false, Reason: model.ReasonSandboxError}
				}
			}()
			results[i] = pool.Submit(ctx, sub, includeStdout)
		}(i, sub)
	}
	wg.Wait()

	return model.BatchResponse{Results: results}
}
