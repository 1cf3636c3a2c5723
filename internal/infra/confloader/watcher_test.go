package confloader

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/authclient/internal/telemetry/logger"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()), WithCoalesce(200*time.Millisecond, 20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	return w
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w := newTestWatcher(t)
	if err := w.Watch("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Watch() expected error for nonexistent directory")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w := newTestWatcher(t)
	w.StartAsync()

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestWatcher_FileChange(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configFile, []byte("server: a"), 0o600); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher(t)
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan string, 10)
	w.OnChange(func(path string) {
		changed <- path
	})
	w.StartAsync()

	// Wait for watcher to be ready
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("server: b"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-changed:
		if filepath.Base(path) != "config.yaml" {
			t.Errorf("callback path = %q", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnChange() callback was not triggered within timeout")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configFile, []byte("server: a"), 0o600); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher(t)
	if err := w.Watch(configFile); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w.OnChange(func(string) { calls.Add(1) })
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "history"), []byte("login"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("callbacks = %d for an unwatched file, want 0", n)
	}
}

// contentRecorder collects the file content seen by each callback.
type contentRecorder struct {
	mu   sync.Mutex
	seen []string
}

func (r *contentRecorder) record(path string) {
	data, _ := os.ReadFile(path)
	r.mu.Lock()
	r.seen = append(r.seen, string(data))
	r.mu.Unlock()
}

func (r *contentRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func startRecording(t *testing.T) (string, *contentRecorder) {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("server: a"), 0o600); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher(t)
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	rec := &contentRecorder{}
	w.OnChange(rec.record)
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)
	return configFile, rec
}

func TestWatcher_ReportsChangeInsideWindow(t *testing.T) {
	configFile, rec := startRecording(t)

	if err := os.WriteFile(configFile, []byte("server: b"), 0o600); err != nil {
		t.Fatal(err)
	}
	// Second save lands inside the coalesce window of the first report.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(configFile, []byte("server: c"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(1500 * time.Millisecond)

	seen := rec.snapshot()
	if len(seen) == 0 {
		t.Fatal("no change reported")
	}
	if last := seen[len(seen)-1]; last != "server: c" {
		t.Errorf("last reported content = %q, want %q (all: %q)", last, "server: c", seen)
	}
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	configFile, rec := startRecording(t)

	for i := 0; i < 10; i++ {
		content := fmt.Sprintf("server: b%d", i)
		if err := os.WriteFile(configFile, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(1 * time.Second)

	seen := rec.snapshot()
	if len(seen) == 0 || len(seen) > 2 {
		t.Fatalf("reports = %d for one burst, want 1 or 2: %q", len(seen), seen)
	}
	if last := seen[len(seen)-1]; last != "server: b9" {
		t.Errorf("last reported content = %q, want %q", last, "server: b9")
	}
}

func TestWatcher_StopCancelsPending(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("server: a"), 0o600); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()), WithCoalesce(200*time.Millisecond, 300*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(configFile); err != nil {
		t.Fatal(err)
	}
	var calls atomic.Int32
	w.OnChange(func(string) { calls.Add(1) })
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("server: b"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	w.Stop()
	time.Sleep(500 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("callbacks after Stop = %d, want 0", n)
	}
}
