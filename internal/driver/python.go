package driver

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"codejudge/internal/sandbox/spec"
)

const pythonDefaultTimeout = 5 * time.Second

// pythonLanguageSpec is the Python driver's run command template; it
// has no compile step.
var pythonLanguageSpec = LanguageSpec{
	RunTpl: "python3 {src}",
	Src:    "sol.py",
}

// pythonDriver has no compile step; a non-zero exit is always
// runtime_error. Killing the sandbox's process group (not just the
// interpreter PID) is what keeps a submission that forks children
// from leaking processes past the verdict.
type pythonDriver struct {
	profile string
	runCmd  []string
}

// NewPython builds the Python driver.
func NewPython(profile string) Driver {
	runCmd, err := buildCommand(pythonLanguageSpec.RunTpl, pythonLanguageSpec)
	if err != nil {
		panic(err)
	}
	return &pythonDriver{profile: profile, runCmd: runCmd}
}

func (d *pythonDriver) Name() string { return "python" }

func (d *pythonDriver) DefaultTimeout() time.Duration { return pythonDefaultTimeout }

func (d *pythonDriver) Prepare(ctx context.Context, in PrepareInput) (Plan, error) {
	srcPath := filepath.Join(in.WorkDir, "sol.py")
	if err := os.WriteFile(srcPath, []byte(in.Solution), 0o644); err != nil {
		return Plan{}, err
	}

	stdinPath, stdoutPath, stderrPath, err := stageIOFiles(in.WorkDir, "run", in.Input)
	if err != nil {
		return Plan{}, err
	}

	run := spec.RunSpec{
		SubmissionID: in.SubmissionID,
		TestID:       "run",
		WorkDir:      in.WorkDir,
		Cmd:          d.runCmd,
		Profile:      d.profile,
		StdinPath:    stdinPath,
		StdoutPath:   stdoutPath,
		StderrPath:   stderrPath,
		Limits:       withMemoryGrace(in.Limits),
	}

	return Plan{Run: run}, nil
}

func (d *pythonDriver) Postprocess(ctx context.Context, stdout, stderr string, exitCode int) PostResult {
	return PostResult{Stdout: stdout, Stderr: stderr}
}

// memoryGraceMB is added to the requested memory limit for
// interpreted/managed runtimes (Python, Lean) whose baseline
// footprint would otherwise eat into the submission's own budget.
const memoryGraceMB = 128

func withMemoryGrace(limits spec.ResourceLimit) spec.ResourceLimit {
	if limits.MemoryMB > 0 {
		limits.MemoryMB += memoryGraceMB
	}
	return limits
}
