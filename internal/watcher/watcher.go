// Package watcher reports changes to the topology file being viewed so
// the terminal UI can reload it. It watches the file's directory with
// fsnotify, which also catches editors that save by rename, and falls
// back to polling when fsnotify is unavailable.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Mr-Dark-debug/topoview/pkg/debug"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets a callback invoked after each debounced change.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithForcePoll skips fsnotify.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher monitors one file.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()
	forcePoll    bool

	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	polling   bool
	lastMtime time.Time
	lastSize  int64

	cancel   context.CancelFunc
	done     <-chan struct{}
	started  bool
	mu       sync.RWMutex
	changeCh chan struct{}
	errCh    chan error
}

// New creates a watcher for path. Call Start to begin.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		changeCh:     make(chan struct{}, 1),
		errCh:        make(chan error, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = ctx.Done()

	if info, err := os.Stat(w.path); err == nil {
		w.lastMtime = info.ModTime()
		w.lastSize = info.Size()
	} else {
		w.lastMtime = time.Time{}
		w.lastSize = 0
	}

	w.polling = w.forcePoll
	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fsw.Add(filepath.Dir(w.path))
			if err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			debug.Warn("fsnotify unavailable for %s, polling: %v", w.path, err)
			w.polling = true
		} else {
			w.fsWatcher = fsw
			go w.watchEvents(ctx, fsw)
		}
	}
	if w.polling {
		go w.watchPolling(ctx)
	}

	w.started = true
	debug.Log("watching %s (polling=%v)", w.path, w.polling)
	return nil
}

// Stop ends watching. The change channel stays open.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// Changed receives after each debounced change.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Errors receives watch errors, ErrFileRemoved included. Errors are
// dropped while one is pending.
func (w *Watcher) Errors() <-chan error {
	return w.errCh
}

// Done is closed when the current run is stopped. It is nil before the
// first Start.
func (w *Watcher) Done() <-chan struct{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.done
}

// Path returns the absolute watched path.
func (w *Watcher) Path() string {
	return w.path
}

// IsPolling reports whether the watcher fell back to polling.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether the watcher runs.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

func (w *Watcher) watchEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove):
				// Atomic saves remove then recreate; only report a
				// removal the debounce window does not heal.
				w.debouncer.Trigger(w.checkRemoved)
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create), ev.Has(fsnotify.Rename):
				w.debouncer.Trigger(w.notifyChange)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

func (w *Watcher) watchPolling(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				w.mu.RLock()
				had := !w.lastMtime.IsZero()
				w.mu.RUnlock()
				if os.IsNotExist(err) {
					if had {
						w.mu.Lock()
						w.lastMtime = time.Time{}
						w.mu.Unlock()
						w.reportError(ErrFileRemoved)
					}
				} else {
					w.reportError(err)
				}
				continue
			}

			w.mu.Lock()
			changed := !info.ModTime().Equal(w.lastMtime) || info.Size() != w.lastSize
			w.lastMtime = info.ModTime()
			w.lastSize = info.Size()
			w.mu.Unlock()

			if changed {
				w.debouncer.Trigger(w.notifyChange)
			}
		}
	}
}

func (w *Watcher) checkRemoved() {
	if _, err := os.Stat(w.path); err == nil {
		w.notifyChange()
		return
	}
	w.reportError(ErrFileRemoved)
}

func (w *Watcher) notifyChange() {
	if !w.IsStarted() {
		return
	}
	debug.Log("change detected: %s", w.path)
	w.onChange()
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}

func (w *Watcher) reportError(err error) {
	if !w.IsStarted() {
		return
	}
	debug.Warn("watch %s: %v", w.path, err)
	select {
	case w.errCh <- err:
	default:
	}
}
