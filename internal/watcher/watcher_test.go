package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) onChange(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_WriteTriggersDebouncedReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := writeFile(path, "version: a"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	w := NewWatcher(path, rec.onChange, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		if err := writeFile(path, "version: b"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !waitFor(t, 2*time.Second, func() bool { return rec.count() >= 1 }) {
		t.Fatal("expected a reload callback")
	}
	time.Sleep(300 * time.Millisecond)
	if n := rec.count(); n != 1 {
		t.Errorf("burst of writes should coalesce into one reload, got %d", n)
	}
	rec.mu.Lock()
	got := rec.paths[0]
	rec.mu.Unlock()
	if got != w.Path() {
		t.Errorf("callback path = %s, want %s", got, w.Path())
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := writeFile(path, "version: a"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	w := NewWatcher(path, rec.onChange, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(filepath.Join(dir, "other.yaml"), "x"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("unrelated file should not trigger reload, got %d", n)
	}
}

func TestWatcher_AtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := writeFile(path, "version: a"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	w := NewWatcher(path, rec.onChange, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	tmp := filepath.Join(dir, ".catalog.yaml.tmp")
	if err := writeFile(tmp, "version: b"); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 2*time.Second, func() bool { return rec.count() >= 1 }) {
		t.Error("rename onto the catalog path should trigger reload")
	}
}

func TestWatcher_StopCancelsPending(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := writeFile(path, "version: a"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	w := NewWatcher(path, rec.onChange, WithDebounce(200*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Trigger(); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
	time.Sleep(400 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("Stop should cancel the pending reload, got %d", n)
	}
	if err := w.Trigger(); err != ErrNotStarted {
		t.Errorf("Trigger after Stop = %v, want ErrNotStarted", err)
	}
}

func TestWatcher_ContextCancelStops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	rec := &recorder{}
	w := NewWatcher(path, rec.onChange, WithDebounce(20*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()
	if !waitFor(t, time.Second, func() bool { return w.Trigger() == ErrNotStarted }) {
		t.Error("watcher should stop when its context is cancelled")
	}
}

func TestWatcher_TriggerSkipsMissingFile(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := NewWatcher(filepath.Join(dir, "absent.yaml"), rec.onChange, WithDebounce(20*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Trigger(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("missing file should not be reported, got %d", n)
	}
}

func TestWatcher_Start_missingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "catalog.yaml")
	w := NewWatcher(path, nil)
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Error("expected error for missing directory")
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
