package dynamo

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState      = errors.New("dynamo: non-finite state")
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")
)

// StepError pins a failure to the tick that produced it.
type StepError struct {
	Tick  int
	Time  float64
	State State
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d (t=%.2fs): %v", e.Tick, e.Time, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
