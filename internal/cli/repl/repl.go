// Package repl implements judgectl's interactive shell: a readline
// prompt that tokenizes one line into a command name and its
// arguments, dispatches to the command registry, and renders the
// judge service's HTTP response.
package repl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"codejudge/internal/cli/command"
	httpclient "codejudge/internal/cli/http"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
)

// Session holds REPL state across input lines.
type Session struct {
	client     *httpclient.Client
	commands   map[string]command.Command
	prettyJSON bool
	rl         *readline.Instance
}

// New builds a Session. historyPath is where readline persists
// command history between invocations; an empty path disables it.
func New(client *httpclient.Client, commands map[string]command.Command, prettyJSON bool, historyPath string) (*Session, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "judgectl> ",
		HistoryFile:     historyPath,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}
	return &Session{client: client, commands: commands, prettyJSON: prettyJSON, rl: rl}, nil
}

// Run drives the read-eval-print loop until EOF or an exit command.
func (s *Session) Run(ctx context.Context) {
	defer s.rl.Close()
	for {
		line, err := s.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "read input failed: %v\n", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if s.handleSystemCommand(line) {
			continue
		}
		if err := s.handleCommand(ctx, line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func (s *Session) handleSystemCommand(line string) bool {
	switch line {
	case "exit", "quit":
		os.Exit(0)
	case "help":
		s.printHelp()
		return true
	}
	if strings.HasPrefix(line, "set ") {
		s.handleSet(strings.TrimSpace(strings.TrimPrefix(line, "set ")))
		return true
	}
	return false
}

func (s *Session) handleSet(args string) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		fmt.Println("usage: set base|timeout <value>")
		return
	}
	switch parts[0] {
	case "base":
		s.client.SetBaseURL(parts[1])
		fmt.Printf("base set to %s\n", parts[1])
	case "timeout":
		dur, err := time.ParseDuration(parts[1])
		if err != nil {
			fmt.Printf("invalid duration: %v\n", err)
			return
		}
		s.client.SetTimeout(dur)
		fmt.Printf("timeout set to %s\n", dur)
	default:
		fmt.Println("unknown set command")
	}
}

func (s *Session) handleCommand(ctx context.Context, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	cmd, ok := s.commands[tokens[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s (try 'help')", tokens[0])
	}

	spec, err := cmd.Build(tokens[1:])
	if err != nil {
		return err
	}

	resp, err := s.client.Do(ctx, spec.Method, spec.Path, nil, spec.Body)
	if err != nil {
		return err
	}
	s.renderResponse(resp)
	return nil
}

func (s *Session) renderResponse(resp httpclient.ResponseInfo) {
	fmt.Printf("HTTP %d (%s)\n", resp.StatusCode, resp.Duration)
	if len(resp.Body) == 0 {
		return
	}
	if s.prettyJSON {
		var raw interface{}
		if err := json.Unmarshal(resp.Body, &raw); err == nil {
			formatted, _ := json.MarshalIndent(raw, "", "  ")
			fmt.Println(string(formatted))
			return
		}
	}
	fmt.Println(string(resp.Body))
}

func (s *Session) printHelp() {
	fmt.Println("usage: <command> [args]")
	fmt.Println("system: help | exit | set base|timeout <value>")
	fmt.Println("commands:")
	for _, cmd := range s.commands {
		fmt.Printf("  %s\n", cmd.Usage)
	}
}
