// Package logfile reads server logs from disk, transparently decompressing
// archived logs by file extension.
package logfile

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// MaxBytes caps the decompressed size of a log read from disk.
const MaxBytes = 1 << 30

// ErrTooLarge is returned when a decoded log exceeds its size cap.
var ErrTooLarge = errors.New("log exceeds size limit")

// Read returns the text content of the log at path. Files ending in .gz,
// .zst or .bz2 are decompressed. The decoded log may hold at most MaxBytes.
func Read(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	return Decode(filepath.Base(path), f, MaxBytes)
}

// Decode reads all of r, decompressing according to name's extension. The
// cap applies to the decompressed text: more than max bytes is ErrTooLarge.
func Decode(name string, r io.Reader, max int64) (string, error) {
	src := r
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst":
		dec, err := zstd.NewReader(r, zstd.WithDecoderMaxMemory(uint64(max)))
		if err != nil {
			return "", fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	case ".gz":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return "", fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	case ".bz2":
		src = bzip2.NewReader(r)
	}

	b, err := io.ReadAll(io.LimitReader(src, max+1))
	if err != nil {
		return "", fmt.Errorf("read log: %w", err)
	}
	if int64(len(b)) > max {
		return "", fmt.Errorf("read log: %w (%d bytes)", ErrTooLarge, max)
	}
	return string(b), nil
}

// IsLog reports whether name looks like a server log this tool can read.
func IsLog(name string) bool {
	name = strings.ToLower(name)
	for _, ext := range []string{".gz", ".zst", ".bz2"} {
		name = strings.TrimSuffix(name, ext)
	}
	return strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".txt")
}
