package vaultfs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, path string) *FileWatcher {
	t.Helper()
	fw, err := NewFileWatcher(path)
	if err != nil {
		t.Fatalf("NewFileWatcher: %v", err)
	}
	if err := fw.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { fw.Stop() })
	return fw
}

// waitForOp drains events until one with the wanted op arrives.
// Filesystems may coalesce or prepend events (e.g. a create before a write),
// so we match on op rather than exact sequences.
func waitForOp(t *testing.T, fw *FileWatcher, want EventOp) Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-fw.Events():
			if !ok {
				t.Fatal("events channel closed")
			}
			if event.Op == want {
				return event
			}
		case err := <-fw.Errors():
			t.Fatalf("watcher error: %v", err)
		case <-deadline:
			t.Fatalf("no %s event within deadline", want)
		}
	}
}

func TestFileWatcher_DetectsCreateAndModify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	fw := startWatcher(t, path)

	if err := os.WriteFile(path, []byte("a: 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	event := waitForOp(t, fw, OpCreate)
	if event.Path != path && event.Path != mustAbs(t, path) {
		t.Errorf("event path = %q", event.Path)
	}

	if err := os.WriteFile(path, []byte("a: 2\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitForOp(t, fw, OpModify)
}

func TestFileWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	fw := startWatcher(t, path)

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case event := <-fw.Events():
		t.Errorf("unexpected event for sibling file: %+v", event)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFileWatcher_DetectsDelete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fw := startWatcher(t, path)

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	waitForOp(t, fw, OpDelete)
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	fw := startWatcher(t, filepath.Join(dir, "config.yaml"))

	if err := fw.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if fw.IsRunning() {
		t.Error("watcher still running after Stop")
	}
	if err := fw.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	if err != nil {
		t.Fatalf("Abs: %v", err)
	}
	return abs
}
