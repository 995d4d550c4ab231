package brotlic

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// genBytes produces deterministic test data at three entropy grades: "low"
// repeats one symbol, "medium" draws from a small alphabet, "high" is
// uniform random and effectively incompressible.
func genBytes(kind string, n int) []byte {
	rng := rand.New(rand.NewSource(int64(n)))
	out := make([]byte, n)
	switch kind {
	case "low":
		for i := range out {
			out[i] = 'a'
		}
	case "medium":
		const alphabet = "abcdefghijklmnop"
		for i := range out {
			out[i] = alphabet[rng.Intn(len(alphabet))]
		}
	case "high":
		rng.Read(out)
	default:
		panic("unknown entropy kind " + kind)
	}
	return out
}

func compressAll(t *testing.T, data []byte, opts ...EncoderOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewCompressorWriter(&buf, opts...)
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func decompressAll(t *testing.T, data []byte, opts ...DecoderOption) []byte {
	t.Helper()
	r, err := NewDecompressorReader(bytes.NewReader(data), opts...)
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return out
}

func TestRoundTrip_EntropyAndSize(t *testing.T) {
	for _, kind := range []string{"low", "medium", "high"} {
		for _, size := range []int{0, 32, 512, 8192} {
			t.Run(fmt.Sprintf("%s/%d", kind, size), func(t *testing.T) {
				data := genBytes(kind, size)
				out := decompressAll(t, compressAll(t, data))
				require.Equal(t, data, out)
			})
		}
	}
}

func TestRoundTrip_ParameterSweep(t *testing.T) {
	data := genBytes("medium", 4096)
	for _, q := range []int{0, 5, 11} {
		for _, w := range []int{10, 22, 24} {
			for _, b := range []int{16, 24} {
				t.Run(fmt.Sprintf("q%d/w%d/b%d", q, w, b), func(t *testing.T) {
					comp := compressAll(t, data,
						WithQuality(q), WithWindowBits(w), WithBlockBits(b))
					require.Equal(t, data, decompressAll(t, comp))
				})
			}
		}
	}
}

func TestRoundTrip_ReaderCompressWriterDecompress(t *testing.T) {
	data := genBytes("medium", 16384)

	cr, err := NewCompressorReader(bytes.NewReader(data))
	require.NoError(t, err)
	comp, err := io.ReadAll(cr)
	require.NoError(t, err)

	var out bytes.Buffer
	dw, err := NewDecompressorWriter(&out)
	require.NoError(t, err)
	// Push in uneven chunks to exercise partial consumption.
	for len(comp) > 0 {
		n := min(13, len(comp))
		written, err := dw.Write(comp[:n])
		require.NoError(t, err)
		require.Equal(t, n, written)
		comp = comp[n:]
	}
	require.NoError(t, dw.Close())
	require.Equal(t, data, out.Bytes())
}

func TestCompressorWriter_OutputIndependentOfChunking(t *testing.T) {
	data := genBytes("medium", 10000)
	var streams [][]byte
	for _, chunk := range []int{1, 7, len(data)} {
		var buf bytes.Buffer
		w, err := NewCompressorWriter(&buf, WithQuality(5))
		require.NoError(t, err)
		for rest := data; len(rest) > 0; {
			n := min(chunk, len(rest))
			_, err := w.Write(rest[:n])
			require.NoError(t, err)
			rest = rest[n:]
		}
		require.NoError(t, w.Close())
		streams = append(streams, buf.Bytes())
	}
	require.Equal(t, streams[0], streams[1])
	require.Equal(t, streams[0], streams[2])
}

func TestCompressorWriter_FlushMakesDataDecodable(t *testing.T) {
	msg := []byte("hello world")
	var buf bytes.Buffer
	w, err := NewCompressorWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(msg)
	require.NoError(t, err)

	// Nothing promised before the flush, everything after it.
	require.NoError(t, w.Flush())
	require.NotZero(t, buf.Len())

	r, err := NewDecompressorReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	got := make([]byte, len(msg))
	_, err = io.ReadFull(r, got)
	require.NoError(t, err)
	require.Equal(t, msg, got)

	require.NoError(t, w.Close())
}

func TestDecompressorReader_SmallReads(t *testing.T) {
	comp := compressAll(t, []byte("test"))
	r, err := NewDecompressorReader(bytes.NewReader(comp))
	require.NoError(t, err)

	var got []byte
	p := make([]byte, 1)
	for {
		n, err := r.Read(p)
		got = append(got, p[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	require.Equal(t, "test", string(got))

	n, err := r.Read(p)
	require.Zero(t, n)
	require.Equal(t, io.EOF, err)
}

func TestDecompressorReader_TruncatedStream(t *testing.T) {
	comp := compressAll(t, genBytes("medium", 4096))
	r, err := NewDecompressorReader(bytes.NewReader(comp[:len(comp)/2]))
	require.NoError(t, err)

	_, err = io.ReadAll(r)
	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	require.Equal(t, "decode", engErr.Op)

	// Poisoned from here on.
	_, rerr := r.Read(make([]byte, 16))
	require.Equal(t, err, rerr)
}

func TestDecompressorReader_CorruptStream(t *testing.T) {
	data := genBytes("medium", 4096)
	comp := compressAll(t, data)
	comp[len(comp)/2] ^= 0xFF

	r, err := NewDecompressorReader(bytes.NewReader(comp))
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	if err == nil {
		// A flipped bit can land in literal data; the output must at
		// least differ.
		require.NotEqual(t, data, out)
	} else {
		var engErr *EngineError
		require.ErrorAs(t, err, &engErr)
	}
}

func TestDecompressorWriter_CloseBeforeStreamEndErrors(t *testing.T) {
	comp := compressAll(t, genBytes("medium", 4096))
	w, err := NewDecompressorWriter(&bytes.Buffer{})
	require.NoError(t, err)
	_, err = w.Write(comp[:len(comp)/2])
	require.NoError(t, err)

	err = w.Close()
	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestCompressorWriter_CloseIdempotent(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCompressorWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	size := buf.Len()
	require.NoError(t, w.Close())
	require.Equal(t, size, buf.Len(), "second Close must not emit bytes")
}

func TestCompressorReader_CleanEOFRepeats(t *testing.T) {
	cr, err := NewCompressorReader(bytes.NewReader([]byte("data")))
	require.NoError(t, err)
	_, err = io.ReadAll(cr)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		n, err := cr.Read(make([]byte, 8))
		require.Zero(t, n)
		require.Equal(t, io.EOF, err)
	}
}

func TestAdapters_Nest(t *testing.T) {
	data := genBytes("medium", 2048)

	var buf bytes.Buffer
	inner, err := NewCompressorWriter(&buf)
	require.NoError(t, err)
	// A decompressor feeding a compressor: recompression through nesting.
	outer, err := NewDecompressorWriter(inner)
	require.NoError(t, err)

	comp := compressAll(t, data)
	_, err = outer.Write(comp)
	require.NoError(t, err)
	require.NoError(t, outer.Close())
	require.NoError(t, inner.Close())

	require.Equal(t, data, decompressAll(t, buf.Bytes()))
}

func TestDecompressorReader_TruncatedAfterPartialOutput(t *testing.T) {
	data := genBytes("medium", 16384)
	comp := compressAll(t, data)
	r, err := NewDecompressorReader(bytes.NewReader(comp[:len(comp)/2]))
	require.NoError(t, err)

	// Half the stream still decodes to something before the cut shows.
	got, err := io.ReadAll(r)
	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	require.Less(t, len(got), len(data))
	require.Equal(t, data[:len(got)], got)
}

func TestDecompressorReader_EmptyInputIsTruncated(t *testing.T) {
	r, err := NewDecompressorReader(bytes.NewReader(nil))
	require.NoError(t, err)

	_, err = io.ReadAll(r)
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestDecoderEngine_EmptyOutputReportsState(t *testing.T) {
	comp := compressAll(t, genBytes("medium", 256))

	eng, err := NewDecoderEngine()
	require.NoError(t, err)

	// Nothing fed yet, nothing buffered.
	_, _, status, err := eng.Process(nil, nil, OpProcess)
	require.NoError(t, err)
	require.Equal(t, StatusNeedsMoreInput, status)

	// Fill a one-byte output so the engine holds back decoded data.
	consumed, produced, status, err := eng.Process(comp, make([]byte, 1), OpFinish)
	require.NoError(t, err)
	require.Equal(t, len(comp), consumed)
	require.Equal(t, 1, produced)
	require.Equal(t, StatusHasMoreOutput, status)

	_, _, status, err = eng.Process(nil, nil, OpFinish)
	require.NoError(t, err)
	require.Equal(t, StatusHasMoreOutput, status)

	// Drain to completion, then an empty-output call reports done.
	for status != StatusDone {
		_, _, status, err = eng.Process(nil, make([]byte, 64), OpFinish)
		require.NoError(t, err)
	}
	_, _, status, err = eng.Process(nil, nil, OpFinish)
	require.NoError(t, err)
	require.Equal(t, StatusDone, status)
}
