// Package model defines the public request/response schema of the
// judge HTTP surface: submissions in, verdicts out.
package model

import "encoding/json"

// Submission is a single piece of code to execute and judge.
type Submission struct {
	Type           string  `json:"type" binding:"required"`
	Solution       string  `json:"solution" binding:"required"`
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expected_output"`
	TimeoutSec     float64 `json:"timeout"`
	MemoryLimitMB  int64   `json:"memory_limit"`
	CPUCore        float64 `json:"cpu_core"`
}

// BatchRequest wraps a list of submissions judged or run together.
type BatchRequest struct {
	Type        string       `json:"type" binding:"required"`
	Submissions []Submission `json:"submissions" binding:"required"`
}

// Reason enumerates why a submission did not run successfully.
// The zero value (empty string) marshals to JSON null.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonWorkerTimeout  Reason = "worker_timeout"
	ReasonMemoryExceeded Reason = "memory_exceeded"
	ReasonCompileError   Reason = "compile_error"
	ReasonRuntimeError   Reason = "runtime_error"
	ReasonSandboxError   Reason = "sandbox_error"
)

// MarshalJSON renders the empty reason as JSON null, matching the
// documented Verdict schema rather than an empty string.
func (r Reason) MarshalJSON() ([]byte, error) {
	if r == ReasonNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// Verdict is the judged outcome of one submission. Its schema is
// identical across every language driver and every endpoint; /judge
// never fills Stdout, /run fills it for a normal or timed-out run
// (not for an OOM, runtime or sandbox error). Cost is nil
// (JSON null) when no run was ever measured, e.g. a sandbox_error that
// never reached the sandbox engine.
type Verdict struct {
	RunSuccess bool     `json:"run_success"`
	Success    bool     `json:"success"`
	Stdout     string   `json:"stdout,omitempty"`
	Stderr     string   `json:"stderr,omitempty"`
	Reason     Reason   `json:"reason"`
	Cost       *float64 `json:"cost"`
}

// BatchResponse carries exactly one Verdict per submitted submission,
// in request order.
type BatchResponse struct {
	Results []Verdict `json:"results"`
}

// StatusResponse reports worker pool occupancy for GET /status.
type StatusResponse struct {
	Queue       int `json:"queue"`
	NumWorkers  int `json:"num_workers"`
}
