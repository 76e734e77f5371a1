package engine

import (
	"codejudge/internal/sandbox/security"
	"codejudge/internal/sandbox/spec"
)

// initRequest is serialized to JSON and piped into the sandbox-init
// helper's stdin. Using stdin rather than argv keeps submission-
// controlled strings (command, env, paths) out of any shell or
// process-listing surface.
type initRequest struct {
	RunSpec       spec.RunSpec
	Isolation     security.IsolationProfile
	EnableSeccomp bool
	EnableNs      bool
}
