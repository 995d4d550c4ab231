package brotlic

import (
	"errors"
	"io"

	"github.com/andybalholm/brotli"
)

// errNeedInput is reported by an inputFeed when its window is drained and
// the stream is not finishing. The brotli decoder passes source errors
// through without disturbing its own state, so a Process call can surface
// the condition and resume later with more input.
var errNeedInput = errors.New("brotlic: need more input")

// inputFeed exposes the input window of the current Process call as an
// io.Reader for the decoder to pull from.
type inputFeed struct {
	data  []byte
	final bool
}

func (f *inputFeed) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		if f.final {
			return 0, io.EOF
		}
		return 0, errNeedInput
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

// decoderEngine adapts the brotli decoder to the Engine contract.
type decoderEngine struct {
	br      *brotli.Reader
	feed    inputFeed
	done    bool
	pending bool // the decoder has buffered output it could not place yet
}

func newDecoderEngine() *decoderEngine {
	d := &decoderEngine{}
	d.br = brotli.NewReader(&d.feed)
	return d
}

func (d *decoderEngine) Process(input, output []byte, op Operation) (consumed, produced int, status Status, err error) {
	if d.done {
		return 0, 0, StatusDone, nil
	}
	d.feed.data = input
	if op == OpFinish {
		d.feed.final = true
	}
	defer func() {
		consumed = len(input) - len(d.feed.data)
		d.feed.data = nil
	}()
	if len(output) == 0 {
		if d.pending {
			return 0, 0, StatusHasMoreOutput, nil
		}
		return 0, 0, StatusNeedsMoreInput, nil
	}
	for {
		n, rerr := d.br.Read(output[produced:])
		produced += n
		switch {
		case errors.Is(rerr, errNeedInput):
			d.pending = false
			return 0, produced, StatusNeedsMoreInput, nil
		case rerr == io.EOF:
			if !d.streamComplete() {
				return 0, produced, StatusNeedsMoreInput, &EngineError{Op: "decode", Err: io.ErrUnexpectedEOF}
			}
			d.done = true
			d.pending = false
			return 0, produced, StatusDone, nil
		case rerr == io.ErrShortBuffer:
			d.pending = true
			return 0, produced, StatusHasMoreOutput, nil
		case rerr != nil:
			return 0, produced, StatusNeedsMoreInput, &EngineError{Op: "decode", Err: rerr}
		}
		if produced == len(output) {
			d.pending = true
			return 0, produced, StatusHasMoreOutput, nil
		}
	}
}

// streamComplete reports whether the decoder reached the end-of-stream
// marker. brotli.Reader passes the feed's io.EOF through whether the stream
// finished cleanly or was cut off mid-block, so EOF alone cannot be trusted.
// A decoder that has finished refuses any further input as excessive, while
// one still mid-stream consumes it, which distinguishes the two cases.
func (d *decoderEngine) streamComplete() bool {
	var spare [1]byte
	d.feed.data = spare[:]
	defer func() { d.feed.data = nil }()
	var out [1]byte
	_, err := d.br.Read(out[:])
	return err != nil && err.Error() == "brotli: excessive input"
}
