package blockstream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/AronParker/brotlic"
)

// ErrChecksum reports a block whose plaintext hash does not match the one
// recorded in the stream.
var ErrChecksum = errors.New("blockstream: checksum mismatch")

// errCorrupt wraps structural stream damage distinct from checksum failure.
func errCorrupt(format string, args ...any) error {
	return fmt.Errorf("blockstream: corrupt stream: "+format, args...)
}

// Decoder is the block-framing decompression engine. The stream header
// names the codec, so a single Decoder handles any blockstream input. It
// plugs into brotlic.DecompressorReader and brotlic.DecompressorWriter.
type Decoder struct {
	in      bytes.Buffer // undecoded stream bytes, at most one block ahead
	staging bytes.Buffer // decoded plaintext awaiting the caller
	raw     []byte       // block decompression destination

	codec     Codec
	maxBits   int
	gotHeader bool
	finished  bool // end marker seen
	done      bool // finished and staging drained
}

// NewDecoder builds a decoder. Codec and block size come from the stream
// header.
func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Process(input, output []byte, op brotlic.Operation) (consumed, produced int, status brotlic.Status, err error) {
	if d.done {
		return 0, 0, brotlic.StatusDone, nil
	}
	if !d.finished {
		if space := d.inLimit() - d.in.Len(); space > 0 {
			consumed = min(space, len(input))
			d.in.Write(input[:consumed])
		}
	}
	final := op == brotlic.OpFinish && consumed == len(input)
	for d.staging.Len() == 0 && !d.finished {
		progress, perr := d.parseNext()
		if perr != nil {
			return consumed, 0, brotlic.StatusNeedsMoreInput, &brotlic.EngineError{Op: "decode", Err: perr}
		}
		if !progress {
			if final {
				return consumed, 0, brotlic.StatusNeedsMoreInput, &brotlic.EngineError{Op: "decode", Err: io.ErrUnexpectedEOF}
			}
			break
		}
	}
	if d.staging.Len() > 0 && len(output) > 0 {
		produced, _ = d.staging.Read(output)
	}
	switch {
	case d.staging.Len() > 0:
		status = brotlic.StatusHasMoreOutput
	case d.finished:
		d.done = true
		status = brotlic.StatusDone
	default:
		status = brotlic.StatusNeedsMoreInput
	}
	return consumed, produced, status, nil
}

// inLimit bounds input buffering to one block plus framing so a hostile
// stream cannot make the decoder absorb unbounded data.
func (d *Decoder) inLimit() int {
	if !d.gotHeader {
		return headerSize
	}
	return 1<<d.maxBits + blockOverhead
}

// parseNext decodes the next stream element out of d.in. It reports false
// with a nil error when more input is needed.
func (d *Decoder) parseNext() (bool, error) {
	if !d.gotHeader {
		return d.parseHeader()
	}
	buf := d.in.Bytes()
	rawLen, n1 := binary.Uvarint(buf)
	if n1 < 0 {
		return false, errCorrupt("raw length varint overflow")
	}
	if n1 == 0 {
		return false, nil
	}
	if rawLen == 0 {
		d.in.Next(n1)
		d.finished = true
		return true, nil
	}
	if rawLen > uint64(1)<<d.maxBits {
		return false, errCorrupt("block length %d exceeds declared maximum %d", rawLen, 1<<d.maxBits)
	}
	compLen, n2 := binary.Uvarint(buf[n1:])
	if n2 < 0 {
		return false, errCorrupt("compressed length varint overflow")
	}
	if n2 == 0 {
		return false, nil
	}
	if compLen >= rawLen {
		return false, errCorrupt("compressed length %d not below raw length %d", compLen, rawLen)
	}
	payloadLen := int(compLen)
	if compLen == 0 {
		payloadLen = int(rawLen) // stored raw
	}
	need := n1 + n2 + 8 + payloadLen
	if len(buf) < need {
		return false, nil
	}
	sum := binary.LittleEndian.Uint64(buf[n1+n2:])
	payload := buf[n1+n2+8 : need]

	var raw []byte
	if compLen == 0 {
		raw = payload
	} else {
		if cap(d.raw) < int(rawLen) {
			d.raw = make([]byte, rawLen)
		}
		raw = d.raw[:rawLen]
		if err := decompressBlock(d.codec, raw, payload); err != nil {
			return false, err
		}
	}
	if xxhash.Sum64(raw) != sum {
		return false, ErrChecksum
	}
	d.staging.Write(raw)
	d.in.Next(need)
	return true, nil
}

func (d *Decoder) parseHeader() (bool, error) {
	if d.in.Len() < headerSize {
		return false, nil
	}
	var hdr [headerSize]byte
	d.in.Read(hdr[:])
	if magic := binary.LittleEndian.Uint32(hdr[0:4]); magic != frameMagic {
		return false, errCorrupt("bad magic %#x", magic)
	}
	codec := Codec(hdr[4])
	if codec != CodecLZ4 && codec != CodecS2 && codec != CodecZstd {
		return false, errCorrupt("unknown codec %d", hdr[4])
	}
	maxBits := int(hdr[5])
	if maxBits < 10 || maxBits > 24 {
		return false, errCorrupt("block size bits %d out of range", maxBits)
	}
	d.codec = codec
	d.maxBits = maxBits
	d.gotHeader = true
	return true, nil
}
