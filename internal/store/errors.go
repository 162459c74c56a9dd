package store

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord marks data that violates the history or settings schema.
var ErrInvalidRecord = errors.New("invalid record")

// ReadError reports persisted state that could not be read or failed
// validation. It is never replaced by empty data.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed write. The previously persisted state is
// left intact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
