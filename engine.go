package brotlic

import "fmt"

// Operation tells an engine what the caller intends with a Process call.
type Operation int

const (
	// OpProcess feeds input through the engine without forcing output.
	OpProcess Operation = iota
	// OpFlush asks the engine to emit everything derivable from the input
	// consumed so far without terminating the stream.
	OpFlush
	// OpFinish signals end of input. The engine emits trailing bytes and
	// settles into StatusDone once they have been drained.
	OpFinish
)

func (op Operation) String() string {
	switch op {
	case OpProcess:
		return "process"
	case OpFlush:
		return "flush"
	case OpFinish:
		return "finish"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

// Status reports how an engine wants to be driven next.
type Status int

const (
	// StatusNeedsMoreInput means the engine consumed what it could and
	// cannot produce further output without more input.
	StatusNeedsMoreInput Status = iota
	// StatusHasMoreOutput means the engine holds pending output. Call
	// Process again with fresh output space before feeding more input.
	StatusHasMoreOutput
	// StatusDone is terminal: all input consumed, all output emitted.
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusNeedsMoreInput:
		return "needs more input"
	case StatusHasMoreOutput:
		return "has more output"
	case StatusDone:
		return "done"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Engine is a stateful byte-stream transform driven incrementally by the
// reader and writer adapters. A single Process call consumes some prefix of
// input, writes some amount into output, and reports how to proceed.
//
// Engines are single-stream: once StatusDone is reported the engine stays
// done. A non-nil error is fatal; callers must not invoke Process again
// after one. Engines are not safe for concurrent use.
type Engine interface {
	Process(input, output []byte, op Operation) (consumed, produced int, status Status, err error)
}
