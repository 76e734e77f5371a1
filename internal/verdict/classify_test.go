package verdict

import (
	"testing"

	"codejudge/internal/model"
	"codejudge/internal/sandbox/result"
)

func boolPtr(b bool) *bool { return &b }

func TestClassifyNormalMatch(t *testing.T) {
	v := Classify(Input{
		Run:            result.RunResult{Termination: result.TerminationNormal, ExitCode: 0},
		Stdout:         "42\n",
		ExpectedOutput: "42",
	})
	if !v.RunSuccess || !v.Success {
		t.Fatalf("expected run_success=true success=true, got %+v", v)
	}
	if v.Reason != model.ReasonNone {
		t.Fatalf("expected no reason, got %q", v.Reason)
	}
}

func TestClassifyNormalMismatch(t *testing.T) {
	v := Classify(Input{
		Run:            result.RunResult{Termination: result.TerminationNormal, ExitCode: 0},
		Stdout:         "wrong",
		ExpectedOutput: "42",
	})
	if !v.RunSuccess || v.Success {
		t.Fatalf("expected run_success=true success=false, got %+v", v)
	}
}

func TestClassifyTimeout(t *testing.T) {
	v := Classify(Input{
		Run:           result.RunResult{Termination: result.TerminationTimeout},
		Stdout:        "partial output\nSuicide from timeout.",
		IncludeStdout: true,
	})
	if v.RunSuccess || v.Success {
		t.Fatalf("expected run_success=false success=false, got %+v", v)
	}
	if v.Reason != model.ReasonWorkerTimeout {
		t.Fatalf("expected worker_timeout, got %q", v.Reason)
	}
	if v.Stdout == "" {
		t.Fatal("expected suicide sentinel in stdout for the /run shape")
	}
}

func TestClassifyTimeoutOmitsStdoutForJudge(t *testing.T) {
	v := Classify(Input{
		Run:           result.RunResult{Termination: result.TerminationTimeout},
		Stdout:        "partial output\nSuicide from timeout.",
		IncludeStdout: false,
	})
	if v.Stdout != "" {
		t.Fatalf("expected empty stdout for /judge shape, got %q", v.Stdout)
	}
}

func TestClassifyOOM(t *testing.T) {
	v := Classify(Input{Run: result.RunResult{Termination: result.TerminationOOM}})
	if v.Reason != model.ReasonMemoryExceeded {
		t.Fatalf("expected memory_exceeded, got %q", v.Reason)
	}
}

func TestClassifySpawnError(t *testing.T) {
	v := Classify(Input{Run: result.RunResult{Termination: result.TerminationSpawnError}})
	if v.Reason != model.ReasonSandboxError {
		t.Fatalf("expected sandbox_error, got %q", v.Reason)
	}
}

func TestClassifyRuntimeError(t *testing.T) {
	v := Classify(Input{Run: result.RunResult{Termination: result.TerminationNormal, ExitCode: 1}})
	if v.RunSuccess || v.Reason != model.ReasonRuntimeError {
		t.Fatalf("expected runtime_error, got %+v", v)
	}
}

func TestClassifyKilled(t *testing.T) {
	v := Classify(Input{Run: result.RunResult{Termination: result.TerminationKilled}})
	if v.RunSuccess || v.Reason != model.ReasonRuntimeError {
		t.Fatalf("expected runtime_error for killed termination, got %+v", v)
	}
}

func TestClassifyCompileFailure(t *testing.T) {
	compile := result.RunResult{Termination: result.TerminationNormal, ExitCode: 1, Stderr: "sol.cpp:1: error"}
	v := Classify(Input{Compile: &compile, Run: result.RunResult{Termination: result.TerminationNormal}})
	if v.RunSuccess || v.Reason != model.ReasonCompileError {
		t.Fatalf("expected compile_error, got %+v", v)
	}
}

func TestClassifyForcedMatchLeanPass(t *testing.T) {
	v := Classify(Input{
		Run:         result.RunResult{Termination: result.TerminationNormal, ExitCode: 0},
		Stdout:      "pass",
		ForcedMatch: boolPtr(true),
	})
	if !v.RunSuccess || !v.Success {
		t.Fatalf("expected success on forced match, got %+v", v)
	}
}

func TestClassifyForcedMatchLeanSorryFail(t *testing.T) {
	v := Classify(Input{
		Run:         result.RunResult{Termination: result.TerminationNormal, ExitCode: 0},
		Stdout:      "fail",
		ForcedMatch: boolPtr(false),
	})
	if !v.RunSuccess || v.Success {
		t.Fatalf("expected run_success=true success=false on forced non-match, got %+v", v)
	}
}

func TestOutputsMatchTrimsTrailingWhitespace(t *testing.T) {
	if !outputsMatch("1 2 3   \n4 5 6\n\n", "1 2 3\n4 5 6") {
		t.Fatal("expected trailing whitespace and trailing blank lines to be ignored")
	}
}
