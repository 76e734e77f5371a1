package command

import "fmt"

// Registry builds the fixed set of judgectl commands, one per judge
// HTTP endpoint plus the parameterless status check.
func Registry() map[string]Command {
	commands := []Command{
		{
			Name:  "status",
			Usage: "status",
			Build: func(args []string) (Spec, error) {
				return Spec{Method: "GET", Path: "/status"}, nil
			},
		},
		endpointCommand("judge", "POST", "/judge"),
		endpointCommand("run", "POST", "/run"),
		endpointCommand("judge-batch", "POST", "/judge/batch"),
		endpointCommand("run-batch", "POST", "/run/batch"),
		endpointCommand("judge-long-batch", "POST", "/judge/long-batch"),
		endpointCommand("run-long-batch", "POST", "/run/long-batch"),
	}

	registry := make(map[string]Command, len(commands))
	for _, c := range commands {
		registry[c.Name] = c
	}
	return registry
}

// endpointCommand builds a Command that POSTs a single JSON argument
// (inline or "@file") to a fixed path.
func endpointCommand(name, method, path string) Command {
	return Command{
		Name:  name,
		Usage: fmt.Sprintf("%s <submission.json | @file.json>", name),
		Build: func(args []string) (Spec, error) {
			if len(args) != 1 {
				return Spec{}, fmt.Errorf("usage: %s <submission.json | @file.json>", name)
			}
			body, err := bodyFromArg(args[0])
			if err != nil {
				return Spec{}, err
			}
			return Spec{Method: method, Path: path, Body: body}, nil
		},
	}
}
