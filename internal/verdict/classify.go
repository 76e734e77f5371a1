// Package verdict turns raw sandbox results into the public Verdict
// schema. Classification is a pure function: same inputs, same
// output, no I/O, no clock reads beyond what the engine already
// measured.
package verdict

import (
	"strings"

	"codejudge/internal/model"
	"codejudge/internal/sandbox/result"
)

// Input bundles everything the classifier needs: an optional compile
// step (cpp only), the run step, and either an expected output to
// compare against or a driver-forced match (Lean's REPL report).
type Input struct {
	Compile        *result.RunResult
	Run            result.RunResult
	Stdout         string
	Stderr         string
	ExpectedOutput string
	ForcedMatch    *bool
	// IncludeStdout controls whether Stdout is copied onto the
	// verdict of a normal or timed-out run; /judge leaves it false, so
	// its verdicts never carry stdout, and /run sets it.
	IncludeStdout bool
}

// Classify implements the truth table in spec.md §4.5: termination
// state takes priority (timeout > oom > normal > killed), a failed
// compile step short-circuits to compile_error, and a normal run
// compares output unless a driver already forced the match outcome.
func Classify(in Input) model.Verdict {
	if in.Compile != nil {
		if v, done := classifyCompile(*in.Compile); done {
			return v
		}
	}

	run := in.Run
	cost := costSeconds(run)

	switch run.Termination {
	case result.TerminationTimeout:
		v := model.Verdict{
			RunSuccess: false,
			Success:    false,
			Reason:     model.ReasonWorkerTimeout,
			Cost:       costPtr(cost),
		}
		if in.IncludeStdout {
			// The suicide sentinel only ever reaches the caller
			// through the /run-shaped form; /judge omits stdout.
			v.Stdout = in.Stdout
		}
		return v
	case result.TerminationOOM:
		return model.Verdict{
			RunSuccess: false,
			Success:    false,
			Reason:     model.ReasonMemoryExceeded,
			Cost:       costPtr(cost),
		}
	case result.TerminationSpawnError:
		return model.Verdict{
			RunSuccess: false,
			Success:    false,
			Reason:     model.ReasonSandboxError,
			Cost:       costPtr(cost),
		}
	case result.TerminationNormal:
		if run.ExitCode != 0 {
			return model.Verdict{
				RunSuccess: false,
				Success:    false,
				Reason:     model.ReasonRuntimeError,
				Cost:       costPtr(cost),
			}
		}
		matched := in.ForcedMatch != nil && *in.ForcedMatch
		if in.ForcedMatch == nil {
			matched = outputsMatch(in.Stdout, in.ExpectedOutput)
		}
		v := model.Verdict{
			RunSuccess: true,
			Success:    matched,
			Stderr:     in.Stderr,
			Reason:     model.ReasonNone,
			Cost:       costPtr(cost),
		}
		if in.IncludeStdout {
			v.Stdout = in.Stdout
		}
		return v
	default: // TerminationKilled and anything unrecognized
		return model.Verdict{
			RunSuccess: false,
			Success:    false,
			Reason:     model.ReasonRuntimeError,
			Cost:       costPtr(cost),
		}
	}
}

func classifyCompile(compile result.RunResult) (model.Verdict, bool) {
	switch compile.Termination {
	case result.TerminationNormal:
		if compile.ExitCode == 0 {
			return model.Verdict{}, false
		}
		return model.Verdict{
			RunSuccess: false,
			Success:    false,
			Stderr:     compile.Stderr,
			Reason:     model.ReasonCompileError,
			Cost:       costPtr(costSeconds(compile)),
		}, true
	case result.TerminationTimeout:
		return model.Verdict{
			RunSuccess: false,
			Success:    false,
			Reason:     model.ReasonWorkerTimeout,
			Cost:       costPtr(costSeconds(compile)),
		}, true
	case result.TerminationOOM:
		return model.Verdict{
			RunSuccess: false,
			Success:    false,
			Reason:     model.ReasonMemoryExceeded,
			Cost:       costPtr(costSeconds(compile)),
		}, true
	default:
		return model.Verdict{
			RunSuccess: false,
			Success:    false,
			Stderr:     compile.Stderr,
			Reason:     model.ReasonCompileError,
			Cost:       costPtr(costSeconds(compile)),
		}, true
	}
}

func costSeconds(r result.RunResult) float64 {
	return float64(r.WallTimeMs) / 1000.0
}

func costPtr(seconds float64) *float64 {
	return &seconds
}

// outputsMatch compares stdout to the expected output line by line,
// trimming trailing whitespace per line and trailing blank lines, so
// a trailing newline or stray spaces never fail an otherwise-correct
// submission.
func outputsMatch(stdout, expected string) bool {
	return normalizeOutput(stdout) == normalizeOutput(expected)
}

func normalizeOutput(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
