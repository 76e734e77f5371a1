package worker

import (
	"context"

	"codejudge/internal/model"
)

// job is one submission waiting for (or running on) a worker.
type job struct {
	ctx           context.Context
	submission    model.Submission
	includeStdout bool
	resultCh      chan model.Verdict
}
