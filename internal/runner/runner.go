// Package runner executes one submission end to end: resolve its
// driver, stage a scratch directory, run compile/run steps through
// the sandbox engine, and classify the result into a Verdict. This is
// the single chokepoint worker pools call into.
package runner

import (
	"context"
	"os"

	"codejudge/internal/driver"
	"codejudge/internal/model"
	"codejudge/internal/sandbox/engine"
	"codejudge/internal/sandbox/result"
	"codejudge/internal/sandbox/spec"
	"codejudge/internal/verdict"
	"codejudge/pkg/contextkey"

	"github.com/google/uuid"
)

// Runner wires the sandbox engine and driver registry into the
// submission-execution pipeline.
type Runner struct {
	eng         engine.Engine
	registry    *driver.Registry
	scratchRoot string
}

// New builds a Runner. scratchRoot is the parent directory under
// which every submission gets its own exclusive, torn-down-on-return
// scratch directory.
func New(eng engine.Engine, registry *driver.Registry, scratchRoot string) *Runner {
	return &Runner{eng: eng, registry: registry, scratchRoot: scratchRoot}
}

// Execute runs one submission and returns its Verdict. includeStdout
// controls whether the run's stdout, including the timeout sentinel,
// is copied onto the Verdict (true for /run, false for /judge).
func (r *Runner) Execute(ctx context.Context, sub model.Submission, includeStdout bool) model.Verdict {
	d, err := r.registry.Resolve(sub.Type)
	if err != nil {
		return sandboxErrorVerdict()
	}

	submissionID := uuid.NewString()
	ctx = context.WithValue(ctx, contextkey.SubmissionID, submissionID)
	scratchDir, err := os.MkdirTemp(r.scratchRoot, "sub-*")
	if err != nil {
		return sandboxErrorVerdict()
	}
	// Scratch dirs are torn down unconditionally, including on a
	// panic unwinding through here, so no submission content ever
	// survives past its own Verdict.
	defer os.RemoveAll(scratchDir)

	limits := limitsFromSubmission(sub, d)

	plan, err := d.Prepare(ctx, driver.PrepareInput{
		SubmissionID: submissionID,
		WorkDir:      scratchDir,
		Solution:     sub.Solution,
		Input:        sub.Input,
		Limits:       limits,
	})
	if err != nil {
		return sandboxErrorVerdict()
	}

	if plan.Compile != nil {
		compileResult, runErr := r.eng.Run(ctx, *plan.Compile)
		if runErr != nil && compileResult.Termination == "" {
			compileResult.Termination = result.TerminationSpawnError
		}
		if compileResult.Termination != result.TerminationNormal || compileResult.ExitCode != 0 {
			return verdict.Classify(verdict.Input{Compile: &compileResult})
		}
	}

	runResult, runErr := r.eng.Run(ctx, plan.Run)
	if runErr != nil && runResult.Termination == "" {
		runResult.Termination = result.TerminationSpawnError
	}

	post := d.Postprocess(ctx, runResult.Stdout, runResult.Stderr, runResult.ExitCode)

	return verdict.Classify(verdict.Input{
		Run:            runResult,
		Stdout:         post.Stdout,
		Stderr:         post.Stderr,
		ExpectedOutput: sub.ExpectedOutput,
		ForcedMatch:    post.ForcedMatch,
		IncludeStdout:  includeStdout,
	})
}

// Kill cancels every sandbox still attributed to a submission ID.
func (r *Runner) Kill(ctx context.Context, submissionID string) error {
	return r.eng.KillSubmission(ctx, submissionID)
}

func sandboxErrorVerdict() model.Verdict {
	return model.Verdict{RunSuccess: false, Success: false, Reason: model.ReasonSandboxError}
}

// limitsFromSubmission converts the public, human-friendly submission
// fields into the sandbox's native units, falling back to the
// driver's default timeout when the submission omits one.
func limitsFromSubmission(sub model.Submission, d driver.Driver) spec.ResourceLimit {
	wallMs := int64(sub.TimeoutSec * 1000)
	if wallMs <= 0 {
		wallMs = d.DefaultTimeout().Milliseconds()
	}
	return spec.ResourceLimit{
		WallTimeMs: wallMs,
		CPUTimeMs:  wallMs,
		MemoryMB:   sub.MemoryLimitMB,
		PIDs:       64,
		CPUCore:    sub.CPUCore,
	}
}
