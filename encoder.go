package brotlic

import (
	"bytes"

	"github.com/andybalholm/brotli"
)

// encoderEngine adapts the brotli encoder to the Engine contract. The
// encoder emits into staging and Process drains staging into the caller's
// output buffer. At most one block of input is fed per call, which keeps
// the staged backlog bounded.
type encoderEngine struct {
	bw       *brotli.Writer
	staging  bytes.Buffer
	blockMax int
	flushed  bool // a flush completed with no input fed since
	closed   bool // OpFinish was issued to the encoder
	done     bool // closed and staging fully drained
}

func newEncoderEngine(cfg encoderConfig) *encoderEngine {
	quality := DefaultQuality
	if cfg.qualitySet {
		quality = cfg.quality
	}
	window := DefaultWindowBits
	if cfg.windowSet {
		window = cfg.windowBits
	}
	blockBits := MinBlockBits
	if cfg.blockSet {
		blockBits = cfg.blockBits
	}
	e := &encoderEngine{blockMax: 1 << blockBits}
	e.bw = brotli.NewWriterOptions(&e.staging, brotli.WriterOptions{
		Quality: quality,
		LGWin:   window,
	})
	return e
}

func (e *encoderEngine) Process(input, output []byte, op Operation) (consumed, produced int, status Status, err error) {
	if e.done {
		return 0, 0, StatusDone, nil
	}
	if len(input) > 0 && !e.closed {
		n := min(len(input), e.blockMax)
		consumed, err = e.bw.Write(input[:n])
		e.flushed = false
		if err != nil {
			return consumed, 0, StatusNeedsMoreInput, &EngineError{Op: "encode", Err: err}
		}
	}
	switch op {
	case OpFlush:
		// Flushing twice without new input would emit empty metablocks.
		if consumed == len(input) && !e.flushed && !e.closed {
			if err := e.bw.Flush(); err != nil {
				return consumed, 0, StatusNeedsMoreInput, &EngineError{Op: "encode", Err: err}
			}
			e.flushed = true
		}
	case OpFinish:
		if consumed == len(input) && !e.closed {
			if err := e.bw.Close(); err != nil {
				return consumed, 0, StatusNeedsMoreInput, &EngineError{Op: "encode", Err: err}
			}
			e.closed = true
		}
	}
	if e.staging.Len() > 0 && len(output) > 0 {
		produced, _ = e.staging.Read(output)
	}
	switch {
	case e.staging.Len() > 0:
		status = StatusHasMoreOutput
	case e.closed:
		e.done = true
		status = StatusDone
	default:
		status = StatusNeedsMoreInput
	}
	return consumed, produced, status, nil
}
