package logfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const sample = "L 10/12/2021 - 20:11:15: World triggered \"Round_Start\"\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadPlain(t *testing.T) {
	got, err := Read(writeFile(t, "match.log", []byte(sample)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != sample {
		t.Errorf("got %q, want %q", got, sample)
	}
}

func TestReadGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(sample)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	got, err := Read(writeFile(t, "match.log.gz", buf.Bytes()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != sample {
		t.Errorf("got %q, want %q", got, sample)
	}
}

func TestReadZstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	data := enc.EncodeAll([]byte(sample), nil)
	enc.Close()

	got, err := Read(writeFile(t, "match.log.zst", data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != sample {
		t.Errorf("got %q, want %q", got, sample)
	}
}

func TestReadCorruptGzip(t *testing.T) {
	_, err := Read(writeFile(t, "bad.log.gz", []byte("not gzip")))
	if err == nil || !strings.Contains(err.Error(), "gzip") {
		t.Errorf("err = %v, want gzip error", err)
	}
}

func TestDecodeLimitPlain(t *testing.T) {
	max := int64(len(sample))
	got, err := Decode("match.log", strings.NewReader(sample), max)
	if err != nil || got != sample {
		t.Fatalf("at limit: got %q, err %v", got, err)
	}
	_, err = Decode("match.log", strings.NewReader(sample+"x"), max)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("over limit: err = %v, want ErrTooLarge", err)
	}
}

func TestDecodeLimitAppliesAfterGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(bytes.Repeat([]byte(sample), 1<<14))
	zw.Close()
	if buf.Len() >= 64<<10 {
		t.Fatalf("compressed size %d, want a small archive", buf.Len())
	}

	_, err := Decode("big.log.gz", &buf, 64<<10)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestDecodeLimitAppliesAfterZstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	data := enc.EncodeAll(bytes.Repeat([]byte(sample), 1<<14), nil)
	enc.Close()

	if _, err := Decode("big.log.zst", bytes.NewReader(data), 64<<10); err == nil {
		t.Error("expected error for oversized zstd log")
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.log")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIsLog(t *testing.T) {
	cases := map[string]bool{
		"match.log":      true,
		"MATCH.LOG.GZ":   true,
		"l0412001.log":   true,
		"match.log.zst":  true,
		"console.txt":    true,
		"demo.dem":       false,
		"config.yml":     false,
		"archive.tar.gz": false,
	}
	for name, want := range cases {
		if got := IsLog(name); got != want {
			t.Errorf("IsLog(%q) = %v, want %v", name, got, want)
		}
	}
}
