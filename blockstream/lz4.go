package blockstream

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// lz4Level maps normalized levels to LZ4 ones. Levels 0-2 use the fast
// algorithm, 3-12 the high compression (HC) variant.
func lz4Level(l Level) lz4.CompressionLevel {
	switch l {
	case LevelFast:
		return lz4.Fast
	case LevelBest:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func lz4Bound(n int) int {
	return lz4.CompressBlockBound(n)
}

func compressLZ4(dst, src []byte, level Level) ([]byte, error) {
	if level == LevelFast {
		var c lz4.Compressor
		n, err := c.CompressBlock(src, dst)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, errIncompressible
		}
		return dst[:n], nil
	}
	c := lz4.CompressorHC{Level: lz4Level(level)}
	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errIncompressible
	}
	return dst[:n], nil
}

func decompressLZ4(dst, src []byte) error {
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return err
	}
	if n != len(dst) {
		return fmt.Errorf("lz4 block decoded to %d bytes, want %d", n, len(dst))
	}
	return nil
}
