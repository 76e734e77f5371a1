package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"codejudge/internal/sandbox/spec"
)

func TestPythonPrepareHasNoCompileStep(t *testing.T) {
	d := NewPython("python")
	workDir := t.TempDir()

	plan, err := d.Prepare(context.Background(), PrepareInput{
		SubmissionID: "sub-1",
		WorkDir:      workDir,
		Solution:     "print('hi')",
		Limits:       spec.ResourceLimit{MemoryMB: 256},
	})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if plan.Compile != nil {
		t.Fatal("python should have no compile step")
	}
	if plan.Run.Limits.MemoryMB != 256+memoryGraceMB {
		t.Fatalf("expected memory grace applied, got %d", plan.Run.Limits.MemoryMB)
	}

	src, err := os.ReadFile(filepath.Join(workDir, "sol.py"))
	if err != nil {
		t.Fatalf("expected sol.py written: %v", err)
	}
	if string(src) != "print('hi')" {
		t.Fatalf("unexpected source: %q", src)
	}
}

func TestPythonPostprocessPassthrough(t *testing.T) {
	d := NewPython("python")
	post := d.Postprocess(context.Background(), "out", "err", 0)
	if post.Stdout != "out" || post.Stderr != "err" || post.ForcedMatch != nil {
		t.Fatalf("expected passthrough postprocess, got %+v", post)
	}
}
