package brotlic

import "io"

// pushCore drives an engine toward a wrapped byte sink.
type pushCore struct {
	dst   io.Writer
	eng   Engine
	buf   []byte // engine output scratch, drained to dst after each call
	state adapterState
	err   error // sticky; once set every call returns it
}

func (c *pushCore) drain(produced int) error {
	if produced == 0 {
		return nil
	}
	if _, err := c.dst.Write(c.buf[:produced]); err != nil {
		c.err = err
		return err
	}
	return nil
}

func (c *pushCore) write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.state == stateFinished {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	c.state = stateActive
	total := 0
	for total < len(p) {
		consumed, produced, status, err := c.eng.Process(p[total:], c.buf, OpProcess)
		total += consumed
		if derr := c.drain(produced); derr != nil {
			return total, derr
		}
		if err != nil {
			c.err = err
			return total, err
		}
		if status == StatusDone {
			// The stream ended on its own; trailing bytes do not belong
			// to it.
			c.state = stateFinished
			if total < len(p) {
				return total, ErrClosed
			}
			return total, nil
		}
		if consumed == 0 && produced == 0 {
			c.err = io.ErrNoProgress
			return total, c.err
		}
	}
	return total, nil
}

func (c *pushCore) flush() error {
	if c.err != nil {
		return c.err
	}
	if c.state == stateFinished {
		return ErrClosed
	}
	for {
		_, produced, status, err := c.eng.Process(nil, c.buf, OpFlush)
		if derr := c.drain(produced); derr != nil {
			return derr
		}
		if err != nil {
			c.err = err
			return err
		}
		if status == StatusDone {
			c.state = stateFinished
			return nil
		}
		if status != StatusHasMoreOutput {
			c.state = stateFlushed
			return nil
		}
	}
}

func (c *pushCore) close() error {
	if c.err != nil {
		return c.err
	}
	if c.state == stateFinished {
		return nil
	}
	for {
		_, produced, status, err := c.eng.Process(nil, c.buf, OpFinish)
		if derr := c.drain(produced); derr != nil {
			return derr
		}
		if err != nil {
			c.err = err
			return err
		}
		if status == StatusDone {
			c.state = stateFinished
			return nil
		}
		if produced == 0 && status != StatusHasMoreOutput {
			// A working engine reaches StatusDone after OpFinish.
			c.err = io.ErrNoProgress
			return c.err
		}
	}
}

// CompressorWriter compresses everything written to it and forwards the
// compressed bytes to a wrapped sink. The stream stays open across writes;
// Close finishes it.
type CompressorWriter struct {
	core pushCore
}

// NewCompressorWriter wraps dst with a brotli compression engine built from
// the given options.
func NewCompressorWriter(dst io.Writer, opts ...EncoderOption) (*CompressorWriter, error) {
	eng, err := NewEncoderEngine(opts...)
	if err != nil {
		return nil, err
	}
	return NewCompressorWriterEngine(eng, dst), nil
}

// NewCompressorWriterEngine wraps dst with a caller-supplied engine.
func NewCompressorWriterEngine(eng Engine, dst io.Writer) *CompressorWriter {
	return &CompressorWriter{core: pushCore{
		dst: dst,
		eng: eng,
		buf: make([]byte, defaultBufSize),
	}}
}

// Write compresses p. It returns the number of plaintext bytes accepted;
// a short count is always paired with an error. Sink errors pass through
// unwrapped and poison the writer.
func (w *CompressorWriter) Write(p []byte) (int, error) {
	return w.core.write(p)
}

// Flush forces out all compressed bytes derivable from the writes so far,
// so the receiving end can decode them without waiting for Close. Flushing
// mid-stream reduces compression density.
func (w *CompressorWriter) Flush() error {
	if err := w.core.flush(); err != nil {
		return err
	}
	return flushSink(w.core.dst)
}

// Close finishes the compressed stream and drains it to the sink. It does
// not close the sink. Close is idempotent: after a successful Close further
// calls return nil, while Write and Flush return ErrClosed.
func (w *CompressorWriter) Close() error {
	return w.core.close()
}

// DecompressorWriter decompresses everything written to it and forwards
// the plaintext to a wrapped sink.
type DecompressorWriter struct {
	core pushCore
}

// NewDecompressorWriter wraps dst with a brotli decompression engine built
// from the given options.
func NewDecompressorWriter(dst io.Writer, opts ...DecoderOption) (*DecompressorWriter, error) {
	cfg := defaultDecoderConfig()
	for _, opt := range opts {
		opt.applyDecoder(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	w := NewDecompressorWriterEngine(newDecoderEngine(), dst)
	w.core.buf = make([]byte, cfg.pullSize())
	return w, nil
}

// NewDecompressorWriterEngine wraps dst with a caller-supplied engine.
func NewDecompressorWriterEngine(eng Engine, dst io.Writer) *DecompressorWriter {
	return &DecompressorWriter{core: pushCore{
		dst: dst,
		eng: eng,
		buf: make([]byte, defaultBufSize),
	}}
}

// Write decompresses p. If the compressed stream ends partway through p,
// Write returns the number of bytes that belonged to the stream along with
// ErrClosed. Malformed input surfaces as an *EngineError and poisons the
// writer.
func (w *DecompressorWriter) Write(p []byte) (int, error) {
	return w.core.write(p)
}

// Flush forwards all plaintext decodable from the bytes written so far.
func (w *DecompressorWriter) Flush() error {
	if err := w.core.flush(); err != nil {
		return err
	}
	return flushSink(w.core.dst)
}

// Close verifies the stream ended cleanly and drains remaining plaintext.
// Closing before the compressed stream is complete returns an *EngineError.
func (w *DecompressorWriter) Close() error {
	return w.core.close()
}

// flushSink forwards a flush to sinks that support one, such as bufio
// writers or a nested adapter.
func flushSink(dst io.Writer) error {
	if f, ok := dst.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
