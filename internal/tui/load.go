package tui

import (
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mr-Dark-debug/topoview/internal/document"
	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
	"github.com/Mr-Dark-debug/topoview/internal/watcher"
	"github.com/Mr-Dark-debug/topoview/pkg/debug"
)

// ────────────────────────────────────────────────────────────
// Messages
// ────────────────────────────────────────────────────────────

// fileLoadedMsg completes load seq. Only the newest seq is applied.
type fileLoadedMsg struct {
	seq   int
	path  string
	model *viewmodel.Model
	took  time.Duration
}

type loadFailedMsg struct {
	seq  int
	path string
	err  error
}

type fileChangedMsg struct{ w *watcher.Watcher }

type watchErrMsg struct {
	w   *watcher.Watcher
	err error
}

type reportReadyMsg struct {
	seq     int
	content string
	err     error
}

// ────────────────────────────────────────────────────────────
// Commands
// ────────────────────────────────────────────────────────────

// loadFile reads, parses and builds the view model off the event loop.
func loadFile(path string, seq int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		doc, err := document.ParseFile(path)
		if err != nil {
			debug.Warn("load %d failed: %v", seq, err)
			return loadFailedMsg{seq: seq, path: path, err: err}
		}
		vm := viewmodel.Build(doc)
		took := time.Since(start)
		debug.LogTiming("load "+filepath.Base(path), took)
		return fileLoadedMsg{seq: seq, path: path, model: vm, took: took}
	}
}

// waitForWatch blocks until w reports. It returns nil once w is stopped,
// which ends the wait loop for a replaced watcher.
func waitForWatch(w *watcher.Watcher) tea.Cmd {
	done := w.Done()
	return func() tea.Msg {
		select {
		case <-w.Changed():
			return fileChangedMsg{w: w}
		case err := <-w.Errors():
			return watchErrMsg{w: w, err: err}
		case <-done:
			return nil
		}
	}
}

// startLoad begins a new load, superseding any load still in flight.
func (m *Model) startLoad(path string) tea.Cmd {
	m.loadSeq++
	m.loading = true
	m.path = path
	m.setStatus("Loading "+filepath.Base(path)+"...", false)
	debug.Log("load %d: %s", m.loadSeq, path)
	return loadFile(path, m.loadSeq)
}

// ensureWatch watches path when watching is on. A watcher on another
// path is stopped first.
func (m *Model) ensureWatch(path string) tea.Cmd {
	if !m.cfg.Watch || path == "" {
		return nil
	}
	if abs, err := filepath.Abs(path); err == nil && m.watcher != nil &&
		m.watcher.Path() == abs && m.watcher.IsStarted() {
		return nil
	}
	m.stopWatch()

	w, err := watcher.New(path, watcher.WithDebounce(m.cfg.Debounce))
	if err != nil {
		m.setStatus("watch: "+err.Error(), true)
		return nil
	}
	if err := w.Start(); err != nil {
		m.setStatus("watch: "+err.Error(), true)
		return nil
	}
	m.watcher = w
	return waitForWatch(w)
}

func (m *Model) stopWatch() {
	if m.watcher != nil {
		m.watcher.Stop()
		m.watcher = nil
	}
}
