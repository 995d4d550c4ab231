package brotlic

import "io"

const (
	defaultBufSize = 32 * 1024
	maxBufSize     = 1 << 20
)

type adapterState int

const (
	stateActive adapterState = iota
	stateFlushed
	stateFinished
)

// pullCore drives an engine from a wrapped byte source on demand.
type pullCore struct {
	src    io.Reader
	eng    Engine
	buf    []byte // source pull buffer
	in     []byte // unconsumed tail of buf
	srcEOF bool
	state  adapterState
	err    error // sticky; once set every call returns it
}

func (c *pullCore) read(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.state == stateFinished {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if len(c.in) == 0 && !c.srcEOF {
			n, err := c.src.Read(c.buf)
			if err != nil && err != io.EOF {
				c.err = err
				return 0, err
			}
			c.in = c.buf[:n]
			if n == 0 {
				// Zero bytes with nil or EOF error both mean the source
				// is exhausted; never ask it again.
				c.srcEOF = true
			}
		}
		op := OpProcess
		if c.srcEOF {
			op = OpFinish
		}
		consumed, produced, status, err := c.eng.Process(c.in, p, op)
		c.in = c.in[consumed:]
		if err != nil {
			c.err = err
			return produced, err
		}
		if status == StatusDone {
			c.state = stateFinished
			if produced > 0 {
				return produced, nil
			}
			return 0, io.EOF
		}
		if produced > 0 {
			return produced, nil
		}
	}
}

// CompressorReader wraps a plaintext source and yields compressed bytes as
// it is read. Reaching io.EOF on the source finishes the stream, so the
// compressed output is complete once Read returns io.EOF.
type CompressorReader struct {
	core pullCore
}

// NewCompressorReader wraps src with a brotli compression engine built from
// the given options.
func NewCompressorReader(src io.Reader, opts ...EncoderOption) (*CompressorReader, error) {
	eng, err := NewEncoderEngine(opts...)
	if err != nil {
		return nil, err
	}
	return NewCompressorReaderEngine(eng, src), nil
}

// NewCompressorReaderEngine wraps src with a caller-supplied engine.
func NewCompressorReaderEngine(eng Engine, src io.Reader) *CompressorReader {
	return &CompressorReader{core: pullCore{
		src: src,
		eng: eng,
		buf: make([]byte, defaultBufSize),
	}}
}

// Read fills p with compressed bytes. After the stream finishes it keeps
// returning (0, io.EOF). A source error or engine fault poisons the reader
// and every later Read returns the same error.
func (r *CompressorReader) Read(p []byte) (int, error) {
	return r.core.read(p)
}

// DecompressorReader wraps a compressed source and yields plaintext as it
// is read.
type DecompressorReader struct {
	core pullCore
}

// NewDecompressorReader wraps src with a brotli decompression engine built
// from the given options.
func NewDecompressorReader(src io.Reader, opts ...DecoderOption) (*DecompressorReader, error) {
	cfg := defaultDecoderConfig()
	for _, opt := range opts {
		opt.applyDecoder(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	r := NewDecompressorReaderEngine(newDecoderEngine(), src)
	r.core.buf = make([]byte, cfg.pullSize())
	return r, nil
}

// NewDecompressorReaderEngine wraps src with a caller-supplied engine.
func NewDecompressorReaderEngine(eng Engine, src io.Reader) *DecompressorReader {
	return &DecompressorReader{core: pullCore{
		src: src,
		eng: eng,
		buf: make([]byte, defaultBufSize),
	}}
}

// Read fills p with decompressed bytes. A truncated or malformed stream
// surfaces as an *EngineError; source errors pass through unwrapped.
func (r *DecompressorReader) Read(p []byte) (int, error) {
	return r.core.read(p)
}
