package blockstream

import (
	"bytes"
	"encoding/binary"
	"math/bits"

	"github.com/cespare/xxhash/v2"

	"github.com/AronParker/brotlic"
)

const (
	frameMagic = uint32(0x31534C42) // "BLS1" little-endian

	headerSize = 6 // magic + codec + block size bits

	// Per-block framing worst case: two varints plus the checksum.
	blockOverhead = 2*binary.MaxVarintLen64 + 8

	MinBlockSize     = 1 << 10
	MaxBlockSize     = 1 << 24
	DefaultBlockSize = 64 << 10
)

type config struct {
	level     Level
	blockSize int
}

// Option configures a blockstream encoder.
type Option interface {
	apply(*config)
}

type funcOpt func(*config)

func (f funcOpt) apply(c *config) {
	f(c)
}

// WithLevel sets the compression effort.
func WithLevel(l Level) Option {
	return funcOpt(func(c *config) {
		c.level = l
	})
}

// WithBlockSize sets the raw block size in bytes. Larger blocks compress
// better; smaller blocks bound memory and make flushes cheaper.
func WithBlockSize(size int) Option {
	return funcOpt(func(c *config) {
		c.blockSize = size
	})
}

// Encoder is a block-framing compression engine. It accumulates plaintext
// into fixed-size blocks, compresses each independently and frames it with
// its length and checksum. It plugs into brotlic.CompressorReader and
// brotlic.CompressorWriter.
type Encoder struct {
	codec   Codec
	level   Level
	block   []byte // current raw block, len grows to blockMax
	scratch []byte // compression destination
	staging bytes.Buffer

	blockMax    int
	wroteHeader bool
	closed      bool
	done        bool
}

// NewEncoder builds an encoder for the given codec.
func NewEncoder(codec Codec, opts ...Option) (*Encoder, error) {
	if codec != CodecLZ4 && codec != CodecS2 && codec != CodecZstd {
		return nil, &brotlic.ParameterError{Param: "codec", Value: int(codec), Min: int(CodecLZ4), Max: int(CodecZstd)}
	}
	cfg := config{level: LevelDefault, blockSize: DefaultBlockSize}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if cfg.blockSize < MinBlockSize || cfg.blockSize > MaxBlockSize {
		return nil, &brotlic.ParameterError{Param: "block size", Value: cfg.blockSize, Min: MinBlockSize, Max: MaxBlockSize}
	}
	return &Encoder{
		codec:    codec,
		level:    cfg.level,
		block:    make([]byte, 0, cfg.blockSize),
		blockMax: cfg.blockSize,
	}, nil
}

func (e *Encoder) Process(input, output []byte, op brotlic.Operation) (consumed, produced int, status brotlic.Status, err error) {
	if e.done {
		return 0, 0, brotlic.StatusDone, nil
	}
	if !e.wroteHeader {
		e.writeHeader()
	}
	if !e.closed {
		// Absorb input into the current block; emit at most one block per
		// call so the staged backlog stays bounded.
		n := min(e.blockMax-len(e.block), len(input))
		e.block = append(e.block, input[:n]...)
		consumed = n
		if len(e.block) == e.blockMax {
			if err := e.emitBlock(); err != nil {
				return consumed, 0, brotlic.StatusNeedsMoreInput, &brotlic.EngineError{Op: "encode", Err: err}
			}
		}
	}
	if consumed == len(input) && !e.closed {
		switch op {
		case brotlic.OpFlush:
			if len(e.block) > 0 {
				if err := e.emitBlock(); err != nil {
					return consumed, 0, brotlic.StatusNeedsMoreInput, &brotlic.EngineError{Op: "encode", Err: err}
				}
			}
		case brotlic.OpFinish:
			if len(e.block) > 0 {
				if err := e.emitBlock(); err != nil {
					return consumed, 0, brotlic.StatusNeedsMoreInput, &brotlic.EngineError{Op: "encode", Err: err}
				}
			}
			e.staging.WriteByte(0) // end marker
			e.closed = true
		}
	}
	if e.staging.Len() > 0 && len(output) > 0 {
		produced, _ = e.staging.Read(output)
	}
	switch {
	case e.staging.Len() > 0:
		status = brotlic.StatusHasMoreOutput
	case e.closed:
		e.done = true
		status = brotlic.StatusDone
	default:
		status = brotlic.StatusNeedsMoreInput
	}
	return consumed, produced, status, nil
}

func (e *Encoder) writeHeader() {
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], frameMagic)
	hdr[4] = byte(e.codec)
	hdr[5] = byte(bits.Len(uint(e.blockMax - 1))) // ceil(log2)
	e.staging.Write(hdr[:])
	e.wroteHeader = true
}

func (e *Encoder) emitBlock() error {
	raw := e.block
	if bound := compressBound(e.codec, len(raw)); cap(e.scratch) < bound {
		e.scratch = make([]byte, bound)
	}
	comp, err := compressBlock(e.codec, e.level, e.scratch[:cap(e.scratch)], raw)
	if err != nil && err != errIncompressible {
		return err
	}

	var hdr [blockOverhead]byte
	n := binary.PutUvarint(hdr[:], uint64(len(raw)))
	n += binary.PutUvarint(hdr[n:], uint64(len(comp))) // zero means stored raw
	binary.LittleEndian.PutUint64(hdr[n:], xxhash.Sum64(raw))
	n += 8
	e.staging.Write(hdr[:n])
	if comp != nil {
		e.staging.Write(comp)
	} else {
		e.staging.Write(raw)
	}
	e.block = e.block[:0]
	return nil
}
