package confloader

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/kvsh/internal/telemetry/logger"
)

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatch_FileChange(t *testing.T) {
	path := writeFile(t, "log:\n  level: info\n")

	var calls atomic.Int32
	w, err := Watch(path, func() { calls.Add(1) }, WithDebounce(20*time.Millisecond), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if !eventually(t, func() bool { return calls.Load() >= 1 }) {
		t.Error("onChange not called after write")
	}
}

func TestWatch_CoalescesBursts(t *testing.T) {
	path := writeFile(t, "db: 0\n")

	var calls atomic.Int32
	w, err := Watch(path, func() { calls.Add(1) }, WithDebounce(200*time.Millisecond))
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("db: 1\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if !eventually(t, func() bool { return calls.Load() >= 1 }) {
		t.Fatal("onChange not called")
	}
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("onChange called %d times, want 1", n)
	}
}

func TestWatch_IgnoresSiblings(t *testing.T) {
	path := writeFile(t, "db: 0\n")

	var calls atomic.Int32
	w, err := Watch(path, func() { calls.Add(1) }, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Stop()

	other := filepath.Join(filepath.Dir(path), "other.yaml")
	if err := os.WriteFile(other, []byte("x: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("onChange called %d times for a sibling file", n)
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	if _, err := Watch("/nonexistent/kvsh/cli.yaml", func() {}); err == nil {
		t.Error("Watch() expected error for missing directory")
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w, err := Watch(writeFile(t, ""), func() {})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
