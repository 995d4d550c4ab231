package brotlic

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Write and Flush on a writer whose stream has
// already been finished, either by Close or because the underlying decode
// stream ended on its own.
var ErrClosed = errors.New("brotlic: stream already finished")

// ParameterError reports a configuration value outside its legal range.
type ParameterError struct {
	Param string
	Value int
	Min   int
	Max   int
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("brotlic: %s %d out of range [%d, %d]", e.Param, e.Value, e.Min, e.Max)
}

// EngineError reports a fatal engine fault: malformed compressed input on
// decode, or an internal transform failure on encode. The stream that
// produced it is unusable; retrying is never valid.
type EngineError struct {
	Op  string // "encode" or "decode"
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("brotlic: %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
