// Package blockstream implements block-framed streaming codecs that plug
// into the brotlic adapters through the Engine interface. Unlike brotli,
// the lz4, s2 and zstd block codecs have no native streaming frame here;
// blockstream supplies one.
//
// A stream starts with a six byte header (magic, codec id, block size
// bits), followed by independently compressed blocks and a terminating
// zero marker:
//
//	block:  uvarint rawLen | uvarint compLen | xxhash64(raw) LE | payload
//	end:    uvarint 0
//
// compLen of zero marks a block stored raw; blocks that compression cannot
// shrink are stored as-is. Every block carries a checksum of its plaintext,
// so corruption is detected deterministically on decode.
package blockstream

import (
	"errors"
	"fmt"
)

// Codec identifies the block compression algorithm of a stream.
type Codec uint8

const (
	CodecLZ4 Codec = iota + 1
	CodecS2
	CodecZstd
)

func (c Codec) String() string {
	switch c {
	case CodecLZ4:
		return "lz4"
	case CodecS2:
		return "s2"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec maps a codec name to its identifier.
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "lz4":
		return CodecLZ4, nil
	case "s2":
		return CodecS2, nil
	case "zstd":
		return CodecZstd, nil
	default:
		return 0, fmt.Errorf("unknown codec %q", s)
	}
}

// Level is the normalized compression effort shared across codecs.
type Level uint8

const (
	LevelDefault Level = iota
	LevelFast
	LevelBest
)

// errIncompressible reports that compressing a block would not make it
// smaller than storing it raw.
var errIncompressible = errors.New("block not compressible")

// compressBlock compresses src with the given codec into scratch owned by
// the caller. It returns errIncompressible when the result would be at
// least as large as src, in which case the block is stored raw.
func compressBlock(codec Codec, level Level, scratch, src []byte) ([]byte, error) {
	var res []byte
	var err error
	switch codec {
	case CodecLZ4:
		res, err = compressLZ4(scratch, src, level)
	case CodecS2:
		res, err = compressS2(scratch, src, level)
	case CodecZstd:
		res, err = compressZstd(scratch, src, level)
	default:
		return nil, fmt.Errorf("unknown codec %d", codec)
	}
	if err != nil {
		return nil, err
	}
	if len(res) >= len(src) {
		return nil, errIncompressible
	}
	return res, nil
}

// decompressBlock restores a block into dst, which must be pre-sized to
// the block's raw length.
func decompressBlock(codec Codec, dst, src []byte) error {
	switch codec {
	case CodecLZ4:
		return decompressLZ4(dst, src)
	case CodecS2:
		return decompressS2(dst, src)
	case CodecZstd:
		return decompressZstd(dst, src)
	default:
		return fmt.Errorf("unknown codec %d", codec)
	}
}

// compressBound returns the scratch size needed to compress a block of n
// bytes with the given codec.
func compressBound(codec Codec, n int) int {
	switch codec {
	case CodecLZ4:
		return lz4Bound(n)
	case CodecS2:
		return s2Bound(n)
	case CodecZstd:
		// EncodeAll appends, so the scratch only needs room for the
		// common case; zstd grows it for pathological inputs.
		return n + n>>8 + 64
	default:
		return n
	}
}
