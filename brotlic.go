// Package brotlic provides streaming brotli compression and decompression
// over arbitrary byte sources and sinks.
//
// Four adapters cover both data directions: CompressorReader and
// DecompressorReader pull from a wrapped io.Reader, CompressorWriter and
// DecompressorWriter push to a wrapped io.Writer. All four satisfy the
// standard io interfaces, so they compose with anything that speaks them.
//
// The transform itself lives behind the Engine interface. The default
// engines implement brotli; the blockstream subpackage provides framed
// lz4, s2 and zstd engines that plug into the same adapters.
//
// None of the types in this package are safe for concurrent use.
package brotlic

import (
	"bytes"
	"io"
)

// Compress compresses input in one shot and returns the complete
// compressed stream.
func Compress(input []byte, opts ...EncoderOption) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(CompressBound(len(input)))
	w, err := NewCompressorWriter(&buf, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(input); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress decompresses a complete stream in one shot.
func Decompress(input []byte, opts ...DecoderOption) ([]byte, error) {
	r, err := NewDecompressorReader(bytes.NewReader(input), opts...)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// CompressBound returns an upper bound on the compressed size of inputSize
// bytes. The bound holds for any quality as long as the stream is not
// flushed mid-way; incompressible data is stored in raw metablocks whose
// overhead the bound accounts for.
func CompressBound(inputSize int) int {
	if inputSize == 0 {
		return 2
	}
	// One raw metablock header per 16 KiB plus stream header and footer.
	largeBlocks := inputSize >> 14
	return inputSize + 2 + 4*largeBlocks + 3 + 1
}
