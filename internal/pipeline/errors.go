package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDocument is returned when a run has no document text to analyse.
	ErrEmptyDocument = errors.New("document text is empty")

	// ErrUndeclaredRead is returned when a stage prompt touches data outside
	// its declared read set.
	ErrUndeclaredRead = errors.New("stage read undeclared input")
)

// StageError reports the stage that aborted a run and why.
type StageError struct {
	Stage StageID
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s) failed: %v", int(e.Stage), e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
