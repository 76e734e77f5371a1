// Command judgectl is an interactive shell for exercising a running
// judge service: submit code, inspect verdicts, check queue depth.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"codejudge/internal/cli/command"
	"codejudge/internal/cli/config"
	httpclient "codejudge/internal/cli/http"
	"codejudge/internal/cli/repl"
)

const defaultConfigPath = "configs/judgectl.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to config file")
	baseURL := flag.String("base", "", "override base URL")
	historyPath := flag.String("history", "", "readline history file path")
	pretty := flag.Bool("pretty", false, "pretty print JSON responses")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = config.Config{BaseURL: config.DefaultBaseURL, Timeout: config.DefaultTimeout}
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *pretty {
		trueValue := true
		cfg.PrettyJSON = &trueValue
	}

	client := httpclient.New(cfg.BaseURL, cfg.Timeout, nil)
	commands := command.Registry()

	session, err := repl.New(client, commands, cfg.PrettyJSON != nil && *cfg.PrettyJSON, *historyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init repl failed: %v\n", err)
		os.Exit(1)
	}
	session.Run(context.Background())
}
