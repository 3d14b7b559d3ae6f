package model

import (
	"errors"
	"fmt"
)

// ErrData marks malformed or unrecognized input records.
var ErrData = errors.New("data error")

// DataError describes a malformed input record. Frame is -1 when the error
// is not tied to a frame (for example roster metadata).
type DataError struct {
	Frame  int
	Reason string
}

func (e *DataError) Error() string {
	if e.Frame < 0 {
		return fmt.Sprintf("%v: %s", ErrData, e.Reason)
	}
	return fmt.Sprintf("%v: frame %d: %s", ErrData, e.Frame, e.Reason)
}

func (e *DataError) Unwrap() error { return ErrData }

// NewDataError builds a DataError with a formatted reason.
func NewDataError(frame int, format string, args ...any) error {
	return &DataError{Frame: frame, Reason: fmt.Sprintf(format, args...)}
}
