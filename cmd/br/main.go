// Command br compresses and decompresses files, brotli by default or one
// of the blockstream codecs via -codec.
//
//	br file            compress file into file.br
//	br -d file.br      decompress file.br into file
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/AronParker/brotlic"
	"github.com/AronParker/brotlic/blockstream"
)

func main() {
	decompress := flag.Bool("d", false, "decompress the input file")
	quality := flag.Int("q", brotlic.DefaultQuality, "brotli quality (0-11)")
	window := flag.Int("w", brotlic.DefaultWindowBits, "brotli window size in bits (10-24)")
	codec := flag.String("codec", "br", "codec: br, lz4, s2 or zstd")
	keep := flag.Bool("k", false, "keep the input file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: br [-d] [-q quality] [-w bits] [-codec name] [-k] FILE")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger, flag.Arg(0), *decompress, *quality, *window, *codec, *keep); err != nil {
		logger.Error("br failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, path string, decompress bool, quality, window int, codec string, keep bool) error {
	var inPath, outPath string
	suffix := "." + codec
	if decompress {
		if !strings.HasSuffix(path, suffix) {
			return fmt.Errorf("%s: expected %s suffix", path, suffix)
		}
		inPath, outPath = path, strings.TrimSuffix(path, suffix)
	} else {
		inPath, outPath = path, path+suffix
	}

	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	start := time.Now()
	var readBytes, wroteBytes int64
	if decompress {
		readBytes, wroteBytes, err = decode(out, in, codec)
	} else {
		readBytes, wroteBytes, err = encode(out, in, codec, quality, window)
	}
	if err != nil {
		os.Remove(outPath)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if !keep {
		if err := os.Remove(inPath); err != nil {
			return err
		}
	}

	logger.Info("done",
		"input", inPath,
		"output", outPath,
		"read", readBytes,
		"wrote", wroteBytes,
		"ratio", fmt.Sprintf("%.3f", ratio(readBytes, wroteBytes, decompress)),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func encode(dst io.Writer, src io.Reader, codec string, quality, window int) (int64, int64, error) {
	eng, err := encoderEngine(codec, quality, window)
	if err != nil {
		return 0, 0, err
	}
	cw := &countingWriter{w: dst}
	w := brotlic.NewCompressorWriterEngine(eng, cw)
	n, err := io.Copy(w, src)
	if err != nil {
		return n, cw.n, err
	}
	if err := w.Close(); err != nil {
		return n, cw.n, err
	}
	return n, cw.n, nil
}

func decode(dst io.Writer, src io.Reader, codec string) (int64, int64, error) {
	cr := &countingReader{r: src}
	var eng brotlic.Engine
	if codec == "br" {
		var err error
		eng, err = brotlic.NewDecoderEngine()
		if err != nil {
			return 0, 0, err
		}
	} else {
		if _, err := blockstream.ParseCodec(codec); err != nil {
			return 0, 0, err
		}
		eng = blockstream.NewDecoder()
	}
	r := brotlic.NewDecompressorReaderEngine(eng, cr)
	n, err := io.Copy(dst, r)
	return cr.n, n, err
}

func encoderEngine(codec string, quality, window int) (brotlic.Engine, error) {
	if codec == "br" {
		return brotlic.NewEncoderEngine(
			brotlic.WithQuality(quality),
			brotlic.WithWindowBits(window),
		)
	}
	c, err := blockstream.ParseCodec(codec)
	if err != nil {
		return nil, err
	}
	return blockstream.NewEncoder(c)
}

func ratio(read, wrote int64, decompress bool) float64 {
	raw, comp := read, wrote
	if decompress {
		raw, comp = wrote, read
	}
	if raw == 0 {
		return 0
	}
	return float64(comp) / float64(raw)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
