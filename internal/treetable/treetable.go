// Package treetable is a bubbletea component that nests a flat list of rows
// by id and parent id and renders them as an expandable two-or-more column
// tree table. Rows may arrive in any order; a row whose parent id is empty
// or unknown becomes a root.
package treetable

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Row is one input row. Cells[0] is drawn in the tree column.
type Row struct {
	ID       string
	ParentID string
	Cells    []string
	Kind     int
}

type node struct {
	row      Row
	depth    int
	expanded bool
	children []*node
	parent   *node
}

// KeyMap holds the widget's key bindings.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Expand      key.Binding
	Collapse    key.Binding
	Toggle      key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Top         key.Binding
	Bottom      key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Expand:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
		Collapse:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		Toggle:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle")),
		ExpandAll:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "expand all")),
		CollapseAll: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "collapse all")),
		Top:         key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	}
}

// Styles controls the widget's look.
type Styles struct {
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Selected  lipgloss.Style
	Branch    lipgloss.Style
	Indicator lipgloss.Style
	Empty     lipgloss.Style
}

// DefaultStyles returns unstyled defaults with a reverse-video cursor.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true),
		Cell:      lipgloss.NewStyle(),
		Selected:  lipgloss.NewStyle().Reverse(true),
		Branch:    lipgloss.NewStyle().Faint(true),
		Indicator: lipgloss.NewStyle(),
		Empty:     lipgloss.NewStyle().Faint(true),
	}
}

// Model is the tree table component.
type Model struct {
	KeyMap KeyMap

	headers   []string
	roots     []*node
	byID      map[string]*node
	flat      []*node
	cursor    int
	offset    int
	width     int
	height    int
	styles    Styles
	kindStyle func(kind int) lipgloss.Style
	expanded  bool
	emptyText string
	size      int
}

// Option configures a Model.
type Option func(*Model)

// WithStyles sets the widget styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithKindStyle styles the tree column by row kind.
func WithKindStyle(fn func(kind int) lipgloss.Style) Option {
	return func(m *Model) { m.kindStyle = fn }
}

// WithExpanded sets the initial expand state of every node.
func WithExpanded(expanded bool) Option {
	return func(m *Model) { m.expanded = expanded }
}

// WithEmptyText sets the text shown when there are no rows.
func WithEmptyText(s string) Option {
	return func(m *Model) { m.emptyText = s }
}

// New builds a widget over rows.
func New(headers []string, rows []Row, opts ...Option) Model {
	m := Model{
		KeyMap:    DefaultKeyMap(),
		headers:   headers,
		styles:    DefaultStyles(),
		emptyText: "Nothing to show.",
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.SetRows(rows)
	return m
}

// SetRows replaces the rows, resetting cursor and expand state.
func (m *Model) SetRows(rows []Row) {
	m.byID = make(map[string]*node, len(rows))
	m.roots = nil
	m.cursor = 0
	m.offset = 0
	m.size = len(rows)

	nodes := make([]*node, 0, len(rows))
	for _, r := range rows {
		n := &node{row: r, expanded: m.expanded}
		if _, dup := m.byID[r.ID]; !dup {
			m.byID[r.ID] = n
		}
		nodes = append(nodes, n)
	}

	for _, n := range nodes {
		p, ok := m.byID[n.row.ParentID]
		if n.row.ParentID == "" || !ok || p == n {
			m.roots = append(m.roots, n)
			continue
		}
		n.parent = p
		p.children = append(p.children, n)
	}

	// Rows caught in a parent cycle never reach a root; promote the first
	// unreached row of each cycle so nothing disappears.
	reached := make(map[*node]bool, len(nodes))
	var mark func(n *node, depth int)
	mark = func(n *node, depth int) {
		if reached[n] {
			return
		}
		reached[n] = true
		n.depth = depth
		for _, c := range n.children {
			mark(c, depth+1)
		}
	}
	for _, r := range m.roots {
		mark(r, 0)
	}
	for _, n := range nodes {
		if reached[n] {
			continue
		}
		if n.parent != nil {
			siblings := n.parent.children
			for i, c := range siblings {
				if c == n {
					n.parent.children = append(siblings[:i:i], siblings[i+1:]...)
					break
				}
			}
			n.parent = nil
		}
		m.roots = append(m.roots, n)
		mark(n, 0)
	}

	m.rebuild()
}

// rebuild recomputes the visible, depth-first list of nodes.
func (m *Model) rebuild() {
	m.flat = nil
	var walk func(n *node)
	walk = func(n *node) {
		m.flat = append(m.flat, n)
		if !n.expanded {
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	for _, r := range m.roots {
		walk(r)
	}
	if m.cursor >= len(m.flat) {
		m.cursor = len(m.flat) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampOffset()
}

// SetSize sets the drawing area. The header takes one line of height.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clampOffset()
}

func (m *Model) bodyHeight() int {
	h := m.height - 1
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) clampOffset() {
	h := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Len returns the number of rows, visible or not.
func (m Model) Len() int {
	return m.size
}

// Visible returns the ids of the currently visible rows in display order.
func (m Model) Visible() []string {
	ids := make([]string, len(m.flat))
	for i, n := range m.flat {
		ids[i] = n.row.ID
	}
	return ids
}

// Depth returns the nesting depth of id, or -1 when unknown.
func (m Model) Depth(id string) int {
	n, ok := m.byID[id]
	if !ok {
		return -1
	}
	return n.depth
}

// Children returns the ids of id's children in input order.
func (m Model) Children(id string) []string {
	n, ok := m.byID[id]
	if !ok {
		return nil
	}
	ids := make([]string, len(n.children))
	for i, c := range n.children {
		ids[i] = c.row.ID
	}
	return ids
}

// Selected returns the row under the cursor.
func (m Model) Selected() (Row, bool) {
	if len(m.flat) == 0 {
		return Row{}, false
	}
	return m.flat[m.cursor].row, true
}

// Cursor returns the cursor index into the visible rows.
func (m Model) Cursor() int {
	return m.cursor
}

// SetExpanded expands or collapses id.
func (m *Model) SetExpanded(id string, expanded bool) {
	n, ok := m.byID[id]
	if !ok {
		return
	}
	n.expanded = expanded
	m.rebuild()
}

// ExpandAll expands every node.
func (m *Model) ExpandAll() {
	m.setAll(true)
}

// CollapseAll collapses every node and moves the cursor to its root.
func (m *Model) CollapseAll() {
	if n := m.current(); n != nil {
		for n.parent != nil {
			n = n.parent
		}
		m.setAll(false)
		m.moveTo(n)
		return
	}
	m.setAll(false)
}

func (m *Model) setAll(expanded bool) {
	for _, n := range m.byID {
		n.expanded = expanded
	}
	m.rebuild()
}

func (m *Model) current() *node {
	if len(m.flat) == 0 {
		return nil
	}
	return m.flat[m.cursor]
}

func (m *Model) moveTo(target *node) {
	for i, n := range m.flat {
		if n == target {
			m.cursor = i
			break
		}
	}
	m.clampOffset()
}

// ClickRow handles a click on the y-th body line (0 = first row below
// the header): the first click selects, a click on the selection toggles.
func (m *Model) ClickRow(y int) {
	i := m.offset + y
	if y < 0 || y >= m.bodyHeight() || i >= len(m.flat) {
		return
	}
	if i == m.cursor {
		n := m.flat[i]
		if len(n.children) > 0 {
			n.expanded = !n.expanded
			m.rebuild()
		}
		return
	}
	m.cursor = i
	m.clampOffset()
}

// Update handles navigation keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := m.current()
	switch {
	case key.Matches(km, m.KeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, m.KeyMap.Down):
		if m.cursor < len(m.flat)-1 {
			m.cursor++
		}
	case key.Matches(km, m.KeyMap.Top):
		m.cursor = 0
	case key.Matches(km, m.KeyMap.Bottom):
		m.cursor = len(m.flat) - 1
		if m.cursor < 0 {
			m.cursor = 0
		}
	case key.Matches(km, m.KeyMap.Expand):
		if n != nil && len(n.children) > 0 {
			if !n.expanded {
				n.expanded = true
				m.rebuild()
			} else {
				m.cursor++
			}
		}
	case key.Matches(km, m.KeyMap.Collapse):
		if n != nil {
			if n.expanded && len(n.children) > 0 {
				n.expanded = false
				m.rebuild()
			} else if n.parent != nil {
				m.moveTo(n.parent)
			}
		}
	case key.Matches(km, m.KeyMap.Toggle):
		if n != nil && len(n.children) > 0 {
			n.expanded = !n.expanded
			m.rebuild()
		}
	case key.Matches(km, m.KeyMap.ExpandAll):
		m.ExpandAll()
	case key.Matches(km, m.KeyMap.CollapseAll):
		m.CollapseAll()
	}
	m.clampOffset()
	return m, nil
}

// View renders the header and the visible window of rows.
func (m Model) View() string {
	if len(m.flat) == 0 {
		return m.styles.Empty.Render(m.emptyText)
	}

	widths := m.columnWidths()
	var lines []string
	lines = append(lines, m.renderLine(m.headers, widths, m.styles.Header))

	end := m.offset + m.bodyHeight()
	if end > len(m.flat) {
		end = len(m.flat)
	}
	for i := m.offset; i < end; i++ {
		n := m.flat[i]
		cells := make([]string, len(widths))
		copy(cells, n.row.Cells)
		cells[0] = m.prefix(n) + cells[0]

		line := m.renderLine(cells, widths, m.styles.Cell)
		if i == m.cursor {
			line = m.styles.Selected.Render(m.renderLine(cells, widths, lipgloss.NewStyle()))
		} else if m.kindStyle != nil {
			line = m.kindStyle(n.row.Kind).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// prefix is the indentation, branch connector and expand indicator.
func (m Model) prefix(n *node) string {
	indent := strings.Repeat("  ", n.depth)
	indicator := "  "
	if len(n.children) > 0 {
		if n.expanded {
			indicator = "▾ "
		} else {
			indicator = "▸ "
		}
	}
	connector := ""
	if n.depth > 0 {
		connector = "├─"
		if last(n) {
			connector = "└─"
		}
	}
	return indent + connector + indicator
}

func last(n *node) bool {
	if n.parent == nil {
		return true
	}
	s := n.parent.children
	return s[len(s)-1] == n
}

func (m Model) columnWidths() []int {
	cols := len(m.headers)
	for _, n := range m.flat {
		if len(n.row.Cells) > cols {
			cols = len(n.row.Cells)
		}
	}
	if cols == 0 {
		cols = 1
	}
	widths := make([]int, cols)
	for i, h := range m.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, n := range m.flat {
		for i, c := range n.row.Cells {
			w := runewidth.StringWidth(c)
			if i == 0 {
				w += runewidth.StringWidth(m.prefix(n))
			}
			if w > widths[i] {
				widths[i] = w
			}
		}
	}
	if m.width > 0 {
		// Shrink the last column first, then the tree column.
		for total(widths)+2*(cols-1) > m.width && shrink(widths) {
		}
	}
	return widths
}

func total(ws []int) int {
	t := 0
	for _, w := range ws {
		t += w
	}
	return t
}

func shrink(ws []int) bool {
	for i := len(ws) - 1; i >= 0; i-- {
		if ws[i] > 4 {
			ws[i]--
			return true
		}
	}
	return false
}

func (m Model) renderLine(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		c := ""
		if i < len(cells) {
			c = cells[i]
		}
		c = runewidth.Truncate(c, w, "…")
		parts[i] = runewidth.FillRight(c, w)
	}
	return style.Render(strings.Join(parts, "  "))
}
