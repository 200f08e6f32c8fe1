package summarize

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInput is returned for an empty or whitespace-only document.
	ErrNoInput = errors.New("no input text")
	// ErrNoQuestion is returned when Q&A is given a blank question.
	ErrNoQuestion = errors.New("no question")
	// ErrNoViableOutput means no summary could be produced.
	ErrNoViableOutput = errors.New("no viable output")
)

// RunError reports a fatal pipeline failure: the stage that failed, how many
// calls it attempted and how many succeeded, and the first underlying cause.
type RunError struct {
	Stage     Stage
	Attempted int
	Succeeded int
	Cause     error
	// Cost already spent on successful calls before the failure.
	Cost float64
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s: %s: %d of %d calls succeeded", ErrNoViableOutput, e.Stage, e.Succeeded, e.Attempted)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RunError) Unwrap() error { return e.Cause }

func (e *RunError) Is(target error) bool { return target == ErrNoViableOutput }
