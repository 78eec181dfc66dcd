package interview

import (
	"errors"
	"fmt"

	"github.com/resolvelab/coach/provider"
)

// ErrRunTimeout is returned when a run fails to reach a terminal state within
// the caller's wait ceiling. The in-flight backend run is not cancelled; only
// the wait stops.
var ErrRunTimeout = errors.New("assistant response took too long")

// ErrNoMessages is returned when the backend produced no messages at all for
// a completed run.
var ErrNoMessages = errors.New("no messages received from assistant")

// ErrInterviewDone is returned when an answer arrives for an interview whose
// resolution has already been generated.
var ErrInterviewDone = errors.New("interview already complete")

// RunFailedError carries a backend-reported run failure.
type RunFailedError struct {
	Code    string
	Message string
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("run failed: %s - %s", e.Code, e.Message)
}

// RunTerminatedError is returned when the backend cancelled or expired a run.
type RunTerminatedError struct {
	Status provider.RunStatus
}

func (e *RunTerminatedError) Error() string {
	return fmt.Sprintf("run terminated with status: %s", e.Status)
}
