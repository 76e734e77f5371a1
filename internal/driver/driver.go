// Package driver implements per-language preparation and
// postprocessing around the language-agnostic sandbox engine: writing
// source files, choosing compile/run commands, and folding
// language-specific output (like Lean's REPL report) into the shape
// the verdict classifier expects.
package driver

import (
	"context"
	"time"

	"codejudge/internal/sandbox/spec"
)

// PrepareInput is everything a driver needs to stage one submission
// into its scratch directory.
type PrepareInput struct {
	SubmissionID string
	WorkDir      string
	Solution     string
	Input        string
	Limits       spec.ResourceLimit
}

// Plan is the set of sandboxed invocations a submission needs: an
// optional compile step, followed by the run step.
type Plan struct {
	Compile *spec.RunSpec
	Run     spec.RunSpec
}

// PostResult is a driver's view of a completed run, folded back into
// the generic shape the verdict classifier consumes.
type PostResult struct {
	Stdout string
	Stderr string
	// ForcedMatch overrides the expected-output comparison axis. Lean
	// sets it from its REPL pass/fail report; cpp and python leave it
	// nil so the classifier compares stdout to expected_output.
	ForcedMatch *bool
}

// Driver captures one language's preparation, postprocessing and
// default timeout, matching the capability set in spec.md §4.2.
type Driver interface {
	// Name identifies the driver for logging and the submission-type
	// registry key.
	Name() string
	// Prepare writes the submission's source into WorkDir and builds
	// the sandbox invocation plan.
	Prepare(ctx context.Context, in PrepareInput) (Plan, error)
	// Postprocess rewrites a completed run's stdout/stderr and may
	// force the classifier's match outcome.
	Postprocess(ctx context.Context, stdout, stderr string, exitCode int) PostResult
	// DefaultTimeout is used when a submission omits one.
	DefaultTimeout() time.Duration
}
