package driver

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"codejudge/internal/sandbox/spec"
)

const cppDefaultTimeout = 5 * time.Second

// cppLanguageSpec is the C++ driver's compile/run command template,
// rendered and tokenized once at construction time via buildCommand.
var cppLanguageSpec = LanguageSpec{
	CompileTpl: "g++ -O2 -std=c++17 -o {bin} {src}",
	RunTpl:     "./{bin}",
	Src:        "sol.cpp",
	Bin:        "sol",
}

// cppDriver compiles sol.cpp with optimizations enabled and runs the
// resulting binary directly; a non-zero compile exit is always
// compile_error, never runtime_error.
type cppDriver struct {
	profile    string
	compileCmd []string
	runCmd     []string
}

// NewCpp builds the C++ driver. profile names the isolation profile
// both the compile and run steps resolve through.
func NewCpp(profile string) Driver {
	compileCmd, err := buildCommand(cppLanguageSpec.CompileTpl, cppLanguageSpec)
	if err != nil {
		panic(err)
	}
	runCmd, err := buildCommand(cppLanguageSpec.RunTpl, cppLanguageSpec)
	if err != nil {
		panic(err)
	}
	return &cppDriver{
		profile:    profile,
		compileCmd: compileCmd,
		runCmd:     runCmd,
	}
}

func (d *cppDriver) Name() string { return "cpp" }

func (d *cppDriver) DefaultTimeout() time.Duration { return cppDefaultTimeout }

func (d *cppDriver) Prepare(ctx context.Context, in PrepareInput) (Plan, error) {
	srcPath := filepath.Join(in.WorkDir, "sol.cpp")
	if err := os.WriteFile(srcPath, []byte(in.Solution), 0o644); err != nil {
		return Plan{}, err
	}

	stdinPath, stdoutPath, stderrPath, err := stageIOFiles(in.WorkDir, "run", in.Input)
	if err != nil {
		return Plan{}, err
	}
	compileStderr := filepath.Join(in.WorkDir, "compile-stderr.txt")
	if err := touchFile(compileStderr); err != nil {
		return Plan{}, err
	}

	compile := spec.RunSpec{
		SubmissionID: in.SubmissionID,
		TestID:       "compile",
		WorkDir:      in.WorkDir,
		Cmd:          d.compileCmd,
		Profile:      d.profile,
		StderrPath:   compileStderr,
		Limits:       compileLimits(in.Limits),
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
		Limits:       in.Limits,
	}

	return Plan{Compile: &compile, Run: run}, nil
}

func (d *cppDriver) Postprocess(ctx context.Context, stdout, stderr string, exitCode int) PostResult {
	return PostResult{Stdout: stdout, Stderr: stderr}
}

// compileLimits gives the compile step a generous, fixed budget
// independent of the submission's own run-time limits; a huge test
// program should not let the compiler itself be starved.
func compileLimits(limits spec.ResourceLimit) spec.ResourceLimit {
	return spec.ResourceLimit{
		WallTimeMs: 10000,
		MemoryMB:   512,
		PIDs:       limits.PIDs,
	}
}
