// Package contextkey defines private context keys shared across packages.
package contextkey

type key string

const (
	TraceID      key = "trace_id"
	RequestID    key = "request_id"
	SubmissionID key = "submission_id"
)
