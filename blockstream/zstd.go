package blockstream

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Block-mode zstd coders are safe for concurrent EncodeAll/DecodeAll use,
// so one instance per level is shared across engines. Options are static
// and valid, hence the discarded constructor errors.
var (
	zstdEncFast, _    = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithEncoderConcurrency(1))
	zstdEncDefault, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	zstdEncBest, _    = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression), zstd.WithEncoderConcurrency(1))
	zstdDec, _        = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderLowmem(true))
)

func compressZstd(dst, src []byte, level Level) ([]byte, error) {
	switch level {
	case LevelFast:
		return zstdEncFast.EncodeAll(src, dst[:0]), nil
	case LevelBest:
		return zstdEncBest.EncodeAll(src, dst[:0]), nil
	default:
		return zstdEncDefault.EncodeAll(src, dst[:0]), nil
	}
}

func decompressZstd(dst, src []byte) error {
	res, err := zstdDec.DecodeAll(src, dst[:0])
	if err != nil {
		return err
	}
	if len(res) != len(dst) {
		return fmt.Errorf("zstd block decoded to %d bytes, want %d", len(res), len(dst))
	}
	return nil
}
