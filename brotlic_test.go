package brotlic

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressDecompress_OneShot(t *testing.T) {
	data := genBytes("medium", 2048)

	comp, err := Compress(data, WithQuality(9))
	require.NoError(t, err)
	require.NotEqual(t, data, comp)

	out, err := Decompress(comp)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestCompress_Empty(t *testing.T) {
	comp, err := Compress(nil)
	require.NoError(t, err)
	require.NotEmpty(t, comp, "even an empty stream has a header")

	out, err := Decompress(comp)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestCompress_InvalidOption(t *testing.T) {
	_, err := Compress([]byte("x"), WithQuality(42))
	var perr *ParameterError
	require.ErrorAs(t, err, &perr)
}

func TestDecompress_Garbage(t *testing.T) {
	_, err := Decompress([]byte("this is not a compressed stream at all"))
	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
}

func TestCompressBound_HoldsForIncompressibleInput(t *testing.T) {
	for _, size := range []int{0, 1, 100, 1 << 14, 1 << 18} {
		t.Run(fmt.Sprintf("%d", size), func(t *testing.T) {
			data := genBytes("high", size)
			comp, err := Compress(data)
			require.NoError(t, err)
			require.LessOrEqual(t, len(comp), CompressBound(size))
		})
	}
}
