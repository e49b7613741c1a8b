package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatchDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	if err := os.WriteFile(path, []byte("L 01/01/2024 - 20:00:00: start\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	fired := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 100*time.Millisecond, func() {
			calls.Add(1)
			fired <- struct{}{}
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 5; i++ {
		f.WriteString("L 01/01/2024 - 20:00:01: line\n")
	}
	f.Close()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("onChange not called after writes")
	}

	// No further events: the burst must have collapsed into one call.
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("onChange called %d times, want 1", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	os.WriteFile(path, nil, 0o644)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 1)
	go Watch(ctx, path, 50*time.Millisecond, func() { fired <- struct{}{} })
	time.Sleep(100 * time.Millisecond)

	os.WriteFile(filepath.Join(dir, "other.log"), []byte("x\n"), 0o644)

	select {
	case <-fired:
		t.Error("onChange fired for a different file")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "server.log"), 0, func() {})
	if err == nil {
		t.Fatal("expected error for a missing directory")
	}
}
