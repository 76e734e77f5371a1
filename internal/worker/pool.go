// Package worker implements the fixed-size pool of goroutines that
// drain a FIFO submission queue, each pinned to its own sandboxed
// process tree for the lifetime of one submission.
package worker

import (
	"context"
	"sync"

	"codejudge/internal/model"
	"codejudge/internal/runner"
)

// Executor runs one submission to a Verdict. *runner.Runner satisfies
// this; tests substitute a fake.
type Executor interface {
	Execute(ctx context.Context, sub model.Submission, includeStdout bool) model.Verdict
}

// Pool is a fixed number of workers draining an unbounded FIFO queue.
// Until Shutdown, admission never blocks or rejects; a deep queue shows
// up as added latency on Submit, not as an error, per spec.md §4.3.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []*job
	workers int
	exec    Executor
	closed  bool
}

// NewPool starts numWorkers goroutines pulling from a shared queue.
func NewPool(numWorkers int, exec Executor) *Pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	p := &Pool{workers: numWorkers, exec: exec}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < numWorkers; i++ {
		go p.loop()
	}
	return p
}

// Submit enqueues a submission and blocks until its Verdict is ready.
// After Shutdown it enqueues nothing and returns a sandbox_error
// verdict at once.
func (p *Pool) Submit(ctx context.Context, sub model.Submission, includeStdout bool) model.Verdict {
	j := &job{ctx: ctx, submission: sub, includeStdout: includeStdout, resultCh: make(chan model.Verdict, 1)}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return model.Verdict{RunSuccess: false, Success: false, Reason: model.ReasonSandboxError}
	}
	p.queue = append(p.queue, j)
	p.mu.Unlock()
	p.cond.Signal()

	return <-j.resultCh
}

// Status reports current queue depth and worker count for GET /status.
func (p *Pool) Status() model.StatusResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return model.StatusResponse{Queue: len(p.queue), NumWorkers: p.workers}
}

// Shutdown stops admitting new work: a later Submit returns a
// sandbox_error verdict. In-flight jobs finish (or are cancelled by
// their own timeout), jobs already queued are still run, and each
// worker exits once the queue is empty.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

func (p *Pool) loop() {
	for {
		j := p.dequeue()
		if j == nil {
			return
		}
		verdict := func() (v model.Verdict) {
			// A panicking driver becomes this submission's sandbox_error
			// instead of taking down the worker goroutine.
			defer func() {
				if r := recover(); r != nil {
					v = model.Verdict{RunSuccess: false, Success: false, Reason: model.ReasonSandboxError}
				}
			}()
			return p.exec.Execute(j.ctx, j.submission, j.includeStdout)
		}()
		j.resultCh <- verdict
	}
}

func (p *Pool) dequeue() *job {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil
	}
	j := p.queue[0]
	p.queue = p.queue[1:]
	return j
}
