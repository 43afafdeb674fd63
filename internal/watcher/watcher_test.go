package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var calls atomic.Int32

	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(80 * time.Millisecond)
	if called.Load() {
		t.Error("callback ran after Cancel")
	}
}

func TestDebouncerDefault(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestWatcherDetectsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.xml")
	if err := os.WriteFile(path, []byte("<CONFIG/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, WithDebounce(30*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("<CONFIG><CHANNEL/></CONFIG>"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w.Changed(), "change notification")
}

func TestWatcherPolling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.xml")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	var changes atomic.Int32
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithDebounce(10*time.Millisecond),
		WithOnChange(func() { changes.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if !w.IsPolling() {
		t.Fatal("expected polling mode")
	}

	// Size change is detected even within the mtime granularity.
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w.Changed(), "polled change")
	if changes.Load() == 0 {
		t.Error("OnChange was not called")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-w.Errors():
		if !errors.Is(err, ErrFileRemoved) {
			t.Errorf("expected ErrFileRemoved, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for removal error")
	}
}

func TestStopSilencesCallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.xml")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	var changes atomic.Int32
	w, err := New(path, WithDebounce(20*time.Millisecond), WithOnChange(func() { changes.Add(1) }))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	done := w.Done()
	w.Stop()
	if w.IsStarted() {
		t.Fatal("expected stopped watcher")
	}
	select {
	case <-done:
	default:
		t.Error("Done must be closed after Stop")
	}
	_ = os.WriteFile(path, []byte("b"), 0o644)
	time.Sleep(80 * time.Millisecond)
	if changes.Load() != 0 {
		t.Errorf("expected no callbacks after Stop, got %d", changes.Load())
	}
}
