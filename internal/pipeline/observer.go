package pipeline

import "time"

// Status is the lifecycle point a StageEvent reports.
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// StageEvent describes one stage transition.
type StageEvent struct {
	RunID       string
	Stage       StageID
	Status      Status
	Duration    time.Duration
	OutputChars int
	Err         error
}

// Observer receives stage events synchronously. It cannot alter the run.
type Observer func(StageEvent)
