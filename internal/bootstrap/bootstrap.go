// Package bootstrap installs the external tools (compilers,
// interpreters, the Lean REPL) a judge deployment needs before it
// accepts traffic, from a YAML manifest. Each tool's setup steps are
// fingerprinted so a re-launch with an unchanged manifest is a no-op.
package bootstrap

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"codejudge/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Step is one action taken while bootstrapping a tool. "shell" is the
// only supported type; an unknown type aborts bootstrap rather than
// silently skipping a step a deployer expected to run.
type Step struct {
	Type string `yaml:"type"`
	Run  string `yaml:"run"`
}

// Tool is one named entry under the manifest's `tools` mapping.
type Tool struct {
	Setup []Step `yaml:"setup"`
}

// Config is the top-level YAML manifest shape.
type Config struct {
	Tools map[string]Tool `yaml:"tools"`
}

// toolState records the fingerprint of the setup steps last applied
// for one tool.
type toolState struct {
	AppliedSig string `json:"applied_sig"`
}

// State is persisted as JSON; it is the only state this service
// writes to disk outside of a submission's own (torn-down) scratch
// dir.
type State map[string]toolState

// LoadConfig reads and parses the YAML tools manifest.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read bootstrap config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse bootstrap config: %w", err)
	}
	return cfg, nil
}

// LoadState reads the fingerprint state file, returning an empty
// State if it does not exist yet (first-ever bootstrap).
func LoadState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bootstrap state: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse bootstrap state: %w", err)
	}
	return state, nil
}

// SaveState writes the fingerprint state file, creating parent
// directories as needed.
func SaveState(path string, state State) error {
	if dir := parentDir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir bootstrap state dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bootstrap state: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// fingerprint hashes the canonical JSON encoding of a tool's setup
// steps; the same steps in the same order always hash to the same
// value, making it a content-addressed idempotence key.
func fingerprint(steps []Step) (string, error) {
	data, err := json.Marshal(struct {
		Setup []Step `json:"setup"`
	}{Setup: steps})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Run bootstraps every tool in the manifest at configPath, skipping
// any whose setup steps are unchanged since the last run recorded in
// statePath. It inherits the current process environment, per
// spec.md's bootstrap/worker environment split: bootstrap itself
// needs full host access to install tools, workers later launch
// submissions with a sanitized one.
func Run(ctx context.Context, configPath, statePath string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	state, err := LoadState(statePath)
	if err != nil {
		return err
	}

	for name, tool := range cfg.Tools {
		sig, err := fingerprint(tool.Setup)
		if err != nil {
			return fmt.Errorf("fingerprint tool %s: %w", name, err)
		}
		if existing, ok := state[name]; ok && existing.AppliedSig == sig {
			logger.Info(ctx, "tool already initialized, skipping", zap.String("tool", name))
			continue
		}

		logger.Info(ctx, "initializing tool", zap.String("tool", name))
		for _, step := range tool.Setup {
			if step.Type != "shell" {
				return fmt.Errorf("tool %s: unsupported step type %q", name, step.Type)
			}
			if err := runShell(ctx, step.Run); err != nil {
				return fmt.Errorf("tool %s setup failed: %w", name, err)
			}
		}
		state[name] = toolState{AppliedSig: sig}
		// Persist immediately: if a later tool's setup fails, this
		// tool's already-applied fingerprint must survive so the next
		// attempt doesn't needlessly redo its (idempotent but costly)
		// setup steps.
		if err := SaveState(statePath, state); err != nil {
			return fmt.Errorf("tool %s: save bootstrap state: %w", name, err)
		}
		logger.Info(ctx, "tool ready", zap.String("tool", name))
	}

	return nil
}

func runShell(ctx context.Context, command string) error {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-lc", command)
	cmd.Env = os.Environ()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return ""
}
