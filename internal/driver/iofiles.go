package driver

import (
	"os"
	"path/filepath"
)

// stageIOFiles writes the submission's stdin to a file (sandbox-init
// pipes it into the child's fd 0) and pre-creates empty stdout/stderr
// files for the helper to redirect the child's output into.
func stageIOFiles(workDir, label, input string) (stdinPath, stdoutPath, stderrPath string, err error) {
	stdinPath = filepath.Join(workDir, label+"-stdin.txt")
	stdoutPath = filepath.Join(workDir, label+"-stdout.txt")
	stderrPath = filepath.Join(workDir, label+"-stderr.txt")

	if err = os.WriteFile(stdinPath, []byte(input), 0o644); err != nil {
		return "", "", "", err
	}
	if err = touchFile(stdoutPath); err != nil {
		return "", "", "", err
	}
	if err = touchFile(stderrPath); err != nil {
		return "", "", "", err
	}
	return stdinPath, stdoutPath, stderrPath, nil
}

func touchFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}
