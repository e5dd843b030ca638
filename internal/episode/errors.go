package episode

import (
	"errors"
	"fmt"
)

var (
	ErrNilWorld      = errors.New("episode: nil world")
	ErrNilController = errors.New("episode: nil controller")
	ErrTickLimit     = errors.New("episode: tick limit reached before completion")
)

// TickError carries the tick at which an episode was aborted.
type TickError struct {
	Index int
	Time  float64
	Err   error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.2fs): %v", e.Index, e.Time, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
