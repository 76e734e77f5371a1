package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLeanPrepareStagesPreludeAndReplRequest(t *testing.T) {
	d := NewLean("lean")
	workDir := t.TempDir()

	plan, err := d.Prepare(context.Background(), PrepareInput{
		SubmissionID: "sub-1",
		WorkDir:      workDir,
		Solution:     "theorem t : 1 = 1 := rfl",
	})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if plan.Compile != nil {
		t.Fatal("lean should have no separate compile step")
	}

	src, err := os.ReadFile(filepath.Join(workDir, "code.lean"))
	if err != nil {
		t.Fatalf("expected code.lean written: %v", err)
	}
	if !strings.HasPrefix(string(src), leanPrelude+"\n") {
		t.Fatalf("expected prelude to prefix submission body, got %q", src)
	}

	stdin, err := os.ReadFile(plan.Run.StdinPath)
	if err != nil {
		t.Fatalf("expected REPL stdin request file: %v", err)
	}
	if !strings.Contains(string(stdin), `"allTactics":false`) {
		t.Fatalf("expected allTactics false in REPL request, got %q", stdin)
	}
}

func TestLeanPostprocessPass(t *testing.T) {
	d := NewLean("lean")
	post := d.Postprocess(context.Background(), `{"sorries":[],"messages":[]}`, "", 0)
	if post.ForcedMatch == nil || !*post.ForcedMatch {
		t.Fatalf("expected forced pass, got %+v", post)
	}
	if post.Stdout != "pass" {
		t.Fatalf("expected stdout=pass, got %q", post.Stdout)
	}
}

func TestLeanPostprocessSorryFails(t *testing.T) {
	d := NewLean("lean")
	post := d.Postprocess(context.Background(), `{"sorries":[{}],"messages":[]}`, "", 0)
	if post.ForcedMatch == nil || *post.ForcedMatch {
		t.Fatalf("expected forced fail on sorry, got %+v", post)
	}
	if post.Stdout != "fail" {
		t.Fatalf("expected stdout=fail, got %q", post.Stdout)
	}
}

func TestLeanPostprocessErrorMessageFails(t *testing.T) {
	d := NewLean("lean")
	post := d.Postprocess(context.Background(), `{"sorries":[],"messages":[{"severity":"error"}]}`, "", 0)
	if post.ForcedMatch == nil || *post.ForcedMatch {
		t.Fatalf("expected forced fail on error message, got %+v", post)
	}
}

func TestLeanPostprocessStderrPassthrough(t *testing.T) {
	d := NewLean("lean")
	post := d.Postprocess(context.Background(), "", "repl crashed", 1)
	if post.ForcedMatch == nil || *post.ForcedMatch {
		t.Fatal("expected forced fail when REPL stderr is non-empty")
	}
	if post.Stderr != "repl crashed" {
		t.Fatalf("expected stderr passthrough, got %q", post.Stderr)
	}
}

func TestLeanPostprocessEmptyStdout(t *testing.T) {
	d := NewLean("lean")
	post := d.Postprocess(context.Background(), "   ", "", 0)
	if post.Stderr != "empty stdout from REPL" {
		t.Fatalf("expected empty stdout error, got %+v", post)
	}
}
