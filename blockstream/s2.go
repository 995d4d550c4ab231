package blockstream

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

func s2Bound(n int) int {
	return s2.MaxEncodedLen(n)
}

func compressS2(dst, src []byte, level Level) ([]byte, error) {
	switch level {
	case LevelFast:
		return s2.Encode(dst[:0], src), nil
	case LevelBest:
		return s2.EncodeBest(dst[:0], src), nil
	default:
		return s2.EncodeBetter(dst[:0], src), nil
	}
}

func decompressS2(dst, src []byte) error {
	res, err := s2.Decode(dst, src)
	if err != nil {
		return err
	}
	if len(res) != len(dst) {
		return fmt.Errorf("s2 block decoded to %d bytes, want %d", len(res), len(dst))
	}
	return nil
}
