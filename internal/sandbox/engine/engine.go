// Package engine implements the language-agnostic sandbox runner:
// it wraps a command with OS-level isolation, enforces wall-clock
// timeout, and reaps the whole process tree before returning.
package engine

import (
	"context"

	"codejudge/internal/sandbox/result"
	"codejudge/internal/sandbox/security"
	"codejudge/internal/sandbox/spec"
)

// Engine executes a RunSpec inside an isolated sandbox.
type Engine interface {
	Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error)
	// KillSubmission kills every process tree still attributed to a
	// submission ID, for out-of-band cancellation; batch siblings are
	// never cancelled through it.
	KillSubmission(ctx context.Context, submissionID string) error
}

// ProfileResolver resolves a profile name into an isolation profile.
type ProfileResolver = security.ProfileResolver

// Config controls sandbox engine behavior.
type Config struct {
	CgroupRoot           string
	SeccompDir           string
	HelperPath           string
	StdoutStderrMaxBytes int64
	EnableSeccomp        bool
	EnableCgroup         bool
	EnableNamespaces     bool
	// GraceMs is the wall-clock grace between a graceful (SIGTERM)
	// and a hard (SIGKILL) termination of the process group.
	GraceMs int64
}
