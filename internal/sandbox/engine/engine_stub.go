//go:build !linux

package engine

import (
	"context"
	"fmt"

	"codejudge/internal/sandbox/result"
	"codejudge/internal/sandbox/spec"
)

// stubEngine reports spawn_error for every run: cgroups, namespaces
// and seccomp are Linux-only, so there is no safe isolation envelope
// to offer on other platforms.
type stubEngine struct{}

// NewEngine on non-Linux platforms returns an engine that refuses to
// run anything rather than silently execute unsandboxed.
func NewEngine(cfg Config, resolver ProfileResolver) (Engine, error) {
	return &stubEngine{}, nil
}

func (stubEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error) {
	return result.RunResult{Termination: result.TerminationSpawnError},
		fmt.Errorf("sandbox engine is only supported on linux")
}

func (stubEngine) KillSubmission(ctx context.Context, submissionID string) error {
	return fmt.Errorf("sandbox engine is only supported on linux")
}
