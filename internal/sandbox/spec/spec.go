// Package spec defines the host-perspective execution plan handed to
// the sandbox engine and the resource limits enforced on it.
package spec

// ResourceLimit describes hard limits enforced by the sandbox for a
// single run. Units match the public Submission schema's semantics
// once converted: milliseconds for time, MiB for memory/output/stack.
type ResourceLimit struct {
	CPUTimeMs  int64
	WallTimeMs int64
	MemoryMB   int64
	StackMB    int64
	OutputMB   int64
	PIDs       int64
	// CPUCore is the fraction of one CPU core to grant (e.g. 0.5),
	// converted into a cgroup v2 cpu.max quota/period pair.
	CPUCore float64
}

// MountSpec describes a bind mount made visible inside the sandbox.
type MountSpec struct {
	Source   string
	Target   string
	ReadOnly bool
}

// RunSpec is the unified execution specification for one sandboxed
// invocation (a compile step, a program run, or a checker run).
type RunSpec struct {
	SubmissionID string
	TestID       string
	WorkDir      string
	Cmd          []string
	Env          []string
	StdinPath    string
	StdoutPath   string
	StderrPath   string
	BindMounts   []MountSpec
	Profile      string
	Limits       ResourceLimit
}
