package plugin

import "time"

// Status captures the run state of one plugin within a pipeline run.
type Status string

const (
	// StatusQueued indicates the plugin is waiting to run.
	StatusQueued Status = "queued"
	// StatusWorking indicates the plugin is currently running.
	StatusWorking Status = "working"
	// StatusDone indicates the plugin finished successfully.
	StatusDone Status = "done"
	// StatusFailed indicates the plugin returned an error or panicked.
	StatusFailed Status = "failed"
	// StatusSkipped indicates the plugin was skipped because a dependency
	// failed, was skipped, or is disabled.
	StatusSkipped Status = "skipped"
)

// Event reports progress for one plugin during RunAll.
type Event struct {
	Plugin  string
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent is called from the
// pipeline goroutine; implementations must not block for long.
type ProgressSink interface {
	OnEvent(Event)
}
