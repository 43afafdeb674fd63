package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/topoview/internal/browse"
	"github.com/Mr-Dark-debug/topoview/internal/config"
	"github.com/Mr-Dark-debug/topoview/internal/treetable"
	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
	"github.com/Mr-Dark-debug/topoview/internal/watcher"
	"github.com/Mr-Dark-debug/topoview/pkg/debug"
	"github.com/Mr-Dark-debug/topoview/pkg/timeutil"
)

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Model is the root BubbleTea model. Browsing state lives in a
// browse.Session; the bubbles widgets only mirror its projection.
type Model struct {
	cfg  config.Config
	keys keyMap
	help help.Model

	// Document
	path     string
	model    *viewmodel.Model
	session  browse.Session
	page     browse.View
	loadSeq  int
	loading  bool
	loadErr  error
	loadedAt time.Time

	// Surfaces
	search    textinput.Model
	searching bool
	table     table.Model
	tree      treetable.Model

	// Overlays
	picker     filepicker.Model
	picking    bool
	pager      viewport.Model
	showReport bool
	showDetail bool

	watcher *watcher.Watcher

	width  int
	height int

	statusMsg     string
	statusIsError bool

	clip func(string) error
	now  func() time.Time
}

// Option configures a Model.
type Option func(*Model)

// WithFile loads path on start.
func WithFile(path string) Option {
	return func(m *Model) { m.path = path }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.clip = fn }
}

// WithClock sets the time source for the header.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// NewModel creates the root model.
func NewModel(cfg config.Config, opts ...Option) Model {
	keys := defaultKeyMap()

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "type to filter rows"
	search.PromptStyle = searchPromptStyle
	search.CharLimit = 256

	t := table.New(table.WithFocused(true), table.WithKeyMap(tableKeyMap(keys)))
	t.SetStyles(tableStyles())

	fp := filepicker.New()
	fp.AllowedTypes = []string{".xml"}
	fp.CurrentDirectory = cfg.PickerDir()
	fp.AutoHeight = true

	m := Model{
		cfg:       cfg,
		keys:      keys,
		help:      help.New(),
		search:    search,
		table:     t,
		picker:    fp,
		pager:     viewport.New(0, 0),
		statusMsg: "Press o to open a file",
		clip:      clipboard.WriteAll,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.path != "" {
		// Init cannot mutate the model, so the first load is numbered here.
		m.loadSeq = 1
		m.loading = true
		m.statusMsg = "Loading " + filepath.Base(m.path) + "..."
	}
	return m
}

// Close stops background work. Call it after the program exits.
func (m Model) Close() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// ────────────────────────────────────────────────────────────
// Init
// ────────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	if m.path == "" {
		return nil
	}
	return loadFile(m.path, m.loadSeq)
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.pager.Width = msg.Width
		m.pager.Height = m.overlayHeight()
		m.picker, _ = m.picker.Update(msg)
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case fileLoadedMsg:
		if msg.seq != m.loadSeq {
			debug.Log("dropping stale load %d (current %d)", msg.seq, m.loadSeq)
			return m, nil
		}
		m.applyLoaded(msg)
		cmd := m.ensureWatch(msg.path)
		return m, cmd

	case loadFailedMsg:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		m.applyFailed(msg)
		cmd := m.ensureWatch(msg.path)
		return m, cmd

	case fileChangedMsg:
		if msg.w == nil || msg.w != m.watcher {
			return m, nil
		}
		cmd := m.startLoad(m.path)
		return m, tea.Batch(cmd, waitForWatch(msg.w))

	case watchErrMsg:
		if msg.w == nil || msg.w != m.watcher {
			return m, nil
		}
		if errors.Is(msg.err, watcher.ErrFileRemoved) {
			m.setStatus(filepath.Base(m.path)+" was removed; waiting for it to return", true)
		} else {
			m.setStatus("watch: "+msg.err.Error(), true)
		}
		return m, waitForWatch(msg.w)

	case reportReadyMsg:
		if msg.seq != m.loadSeq || !m.showReport {
			return m, nil
		}
		m.pager.SetContent(msg.content)
		m.pager.GotoTop()
		if msg.err != nil {
			m.setStatus("report rendered as plain markdown: "+msg.err.Error(), true)
		}
		return m, nil
	}

	// Directory listings and other picker internals.
	if m.picking {
		return m.updatePicker(msg)
	}
	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyLoaded replaces every piece of browsing state with the new model.
func (m *Model) applyLoaded(msg fileLoadedMsg) {
	m.loading = false
	m.loadErr = nil
	m.path = msg.path
	m.model = msg.model
	m.loadedAt = m.now()
	m.session = browse.NewSession(msg.model, m.cfg.BrowseOptions())
	m.searching = false
	m.search.Blur()
	m.search.SetValue("")
	m.showReport = false
	m.showDetail = false
	m.pager.SetContent("")

	if len(m.session.Tabs) == 0 {
		// Nothing tabular: the tree is the only surface left.
		m.session = m.session.Apply(m.model, browse.ShowTree{})
	}
	m.syncSurface()

	m.setStatus(fmt.Sprintf("Loaded %s  %d elements in %s",
		filepath.Base(msg.path), msg.model.Document().Count(), timeutil.FormatDuration(msg.took)), false)
}

// applyFailed shows the invalid-file state. Nothing of the previous
// document survives.
func (m *Model) applyFailed(msg loadFailedMsg) {
	m.loading = false
	m.loadErr = msg.err
	m.path = msg.path
	m.model = nil
	m.session = browse.Session{}
	m.page = browse.View{}
	m.searching = false
	m.search.Blur()
	m.search.SetValue("")
	m.showReport = false
	m.showDetail = false
	m.table.SetRows(nil)
	m.tree = treetable.Model{}
	m.setStatus("Could not load "+filepath.Base(msg.path), true)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsError = isErr
}

// apply runs ev through the session and refreshes the affected widget.
func (m *Model) apply(ev browse.Event) tea.Cmd {
	if m.model == nil {
		return nil
	}
	m.session = m.session.Apply(m.model, ev)

	switch ev.(type) {
	case browse.ShowTree:
		m.searching = false
		m.search.Blur()
		m.buildTree()
	case browse.SelectTab:
		if m.session.Surface == browse.SurfaceTable {
			m.search.SetValue(m.session.Table(m.session.Active).Term)
			m.syncTable(true)
		}
	case browse.Navigate, browse.SearchChanged:
		m.syncTable(true)
	}
	return nil
}

func (m *Model) syncSurface() {
	if m.model == nil {
		return
	}
	if m.session.Surface == browse.SurfaceTree {
		m.buildTree()
		return
	}
	m.syncTable(true)
}

// ────────────────────────────────────────────────────────────
// Keys
// ────────────────────────────────────────────────────────────

// handleKey routes keyboard input based on the current mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceOut) {
		m.stopWatch()
		return m, tea.Quit
	}

	switch {
	case m.picking:
		if key.Matches(msg, m.keys.Cancel) {
			m.picking = false
			return m, nil
		}
		return m.updatePicker(msg)

	case m.showReport, m.showDetail:
		switch {
		case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit),
			m.showReport && key.Matches(msg, m.keys.Report),
			m.showDetail && key.Matches(msg, m.keys.Accept):
			m.showReport = false
			m.showDetail = false
			return m, nil
		}
		var cmd tea.Cmd
		m.pager, cmd = m.pager.Update(msg)
		return m, cmd

	case m.searching:
		return m.handleSearchKey(msg)
	}

	// ── Global ──

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopWatch()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Open):
		cmd := m.openPicker()
		return m, cmd

	case key.Matches(msg, m.keys.Reload):
		if m.path == "" {
			return m, nil
		}
		cmd := m.startLoad(m.path)
		return m, cmd

	case key.Matches(msg, m.keys.Report):
		cmd := m.openReport()
		return m, cmd

	case key.Matches(msg, m.keys.Copy):
		m.copySelection()
		return m, nil
	}

	if m.model == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		cmd := m.cycleMenu(1)
		return m, cmd
	case key.Matches(msg, m.keys.PrevTab):
		cmd := m.cycleMenu(-1)
		return m, cmd
	case key.Matches(msg, m.keys.Tree):
		cmd := m.apply(browse.ShowTree{})
		return m, cmd
	}

	if m.session.Surface == browse.SurfaceTree {
		var cmd tea.Cmd
		m.tree, cmd = m.tree.Update(msg)
		return m, cmd
	}
	return m.handleTableKey(msg)
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.resize()
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Detail):
		m.openDetail()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if m.search.Value() != "" {
			m.search.SetValue("")
			cmd := m.apply(browse.SearchChanged{})
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.First):
		cmd := m.apply(browse.Navigate{Control: browse.ControlFirst})
		return m, cmd
	case key.Matches(msg, m.keys.Prev):
		cmd := m.apply(browse.Navigate{Control: browse.ControlPrev})
		return m, cmd
	case key.Matches(msg, m.keys.Next):
		cmd := m.apply(browse.Navigate{Control: browse.ControlNext})
		return m, cmd
	case key.Matches(msg, m.keys.Last):
		cmd := m.apply(browse.Navigate{Control: browse.ControlLast})
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleSearchKey edits the term. Every edit is a SearchChanged event,
// so the page resets to 1 as the user types.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Accept):
		m.searching = false
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.searching = false
		m.search.Blur()
		if m.search.Value() != "" {
			m.search.SetValue("")
			cmd := m.apply(browse.SearchChanged{})
			return m, cmd
		}
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.apply(browse.SearchChanged{Term: after})
	}
	return m, cmd
}

// cycleMenu moves the active menu entry by delta, wrapping around.
func (m *Model) cycleMenu(delta int) tea.Cmd {
	entries := m.session.Menu(m.cfg.Labels)
	if len(entries) == 0 {
		return nil
	}
	cur := 0
	for i, e := range entries {
		if e.Active {
			cur = i
			break
		}
	}
	next := (cur + delta + len(entries)) % len(entries)
	return m.apply(entries[next].EventFor())
}

// copySelection writes the selected row (tab-separated) or tree node id
// to the clipboard.
func (m *Model) copySelection() {
	if m.model == nil {
		m.setStatus("Nothing to copy", true)
		return
	}
	var text string
	if m.session.Surface == browse.SurfaceTree {
		row, ok := m.tree.Selected()
		if !ok {
			m.setStatus("Nothing to copy", true)
			return
		}
		text = row.ID
	} else {
		i := m.table.Cursor()
		if i < 0 || i >= len(m.page.Rows) {
			m.setStatus("Nothing to copy", true)
			return
		}
		text = strings.Join(m.page.Rows[i], "\t")
	}
	if err := m.clip(text); err != nil {
		m.setStatus("Clipboard error: "+err.Error(), true)
		return
	}
	m.setStatus("📋 Copied "+firstLine(text), false)
}

func firstLine(s string) string {
	s = strings.ReplaceAll(s, "\t", "  ")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

// ────────────────────────────────────────────────────────────
// Layout
// ────────────────────────────────────────────────────────────

// chrome is the number of lines outside the body: header, menu, footer
// and the expanded help block.
func (m Model) chrome() int {
	n := 2
	if m.model != nil {
		n++
	}
	if m.help.ShowAll {
		n += lipgloss.Height(m.help.FullHelpView(m.activeHelp().FullHelp()))
	}
	return n
}

func (m Model) bodyHeight() int {
	h := m.height - m.chrome()
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) overlayHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

// resize propagates the terminal size to the widgets.
func (m *Model) resize() {
	body := m.bodyHeight()
	m.table.SetWidth(m.width)
	m.tree.SetSize(m.width, body-1)
	m.search.Width = m.width - 4
	if m.model != nil && m.session.Surface == browse.SurfaceTable {
		m.syncTable(false)
	} else {
		m.fitTable()
	}
}
