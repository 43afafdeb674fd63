package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"

	"github.com/Mr-Dark-debug/topoview/internal/treetable"
)

// keyMap holds the global bindings. Tree navigation keys live in the
// treetable widget's own KeyMap.
type keyMap struct {
	NextTab  key.Binding
	PrevTab  key.Binding
	Tree     key.Binding
	Search   key.Binding
	Clear    key.Binding
	First    key.Binding
	Prev     key.Binding
	Next     key.Binding
	Last     key.Binding
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Reload   key.Binding
	Copy     key.Binding
	Report   key.Binding
	Help     key.Binding
	Quit     key.Binding
	Detail   key.Binding
	Accept   key.Binding
	Cancel   key.Binding
	ForceOut key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev tab")),
		Tree:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "view tree")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		First:   key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first page")),
		Prev:    key.NewBinding(key.WithKeys("left", "pgup", "h"), key.WithHelp("←", "prev page")),
		Next:    key.NewBinding(key.WithKeys("right", "pgdown", "l"), key.WithHelp("→", "next page")),
		Last:    key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last page")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open file")),
		Reload:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Report:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "report")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Detail:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Accept:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		// ctrl+c quits from every mode, including while typing a search.
		ForceOut: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Search, k.Prev, k.Next, k.Open, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Tree},
		{k.Search, k.Clear, k.Up, k.Down, k.Detail},
		{k.First, k.Prev, k.Next, k.Last},
		{k.Open, k.Reload, k.Copy, k.Report},
		{k.Help, k.Quit},
	}
}

// searchHelp is shown while the search input has focus.
type searchHelp struct{ k keyMap }

func (s searchHelp) ShortHelp() []key.Binding {
	return []key.Binding{s.k.Accept, key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear"))}
}

func (s searchHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{s.ShortHelp()}
}

// overlayHelp is shown over the report and the file picker.
type overlayHelp struct {
	k     keyMap
	extra []key.Binding
}

func (o overlayHelp) ShortHelp() []key.Binding {
	return append(append([]key.Binding(nil), o.extra...), o.k.Cancel)
}

func (o overlayHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{o.ShortHelp()}
}

// treeHelp merges the tree widget's bindings into the global ones.
type treeHelp struct {
	k    keyMap
	tree treetable.KeyMap
}

func (t treeHelp) ShortHelp() []key.Binding {
	return []key.Binding{t.k.NextTab, t.tree.Up, t.tree.Down, t.tree.Toggle, t.k.Copy, t.k.Help, t.k.Quit}
}

func (t treeHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{t.k.NextTab, t.k.PrevTab, t.k.Tree},
		{t.tree.Up, t.tree.Down, t.tree.Top, t.tree.Bottom},
		{t.tree.Expand, t.tree.Collapse, t.tree.Toggle, t.tree.ExpandAll, t.tree.CollapseAll},
		{t.k.Open, t.k.Reload, t.k.Copy, t.k.Report},
		{t.k.Help, t.k.Quit},
	}
}

// tableKeyMap leaves paging to the pagination bar: the body only moves
// the row cursor inside the current page.
func tableKeyMap(k keyMap) table.KeyMap {
	none := key.NewBinding(key.WithDisabled())
	return table.KeyMap{
		LineUp:       k.Up,
		LineDown:     k.Down,
		PageUp:       none,
		PageDown:     none,
		HalfPageUp:   none,
		HalfPageDown: none,
		GotoTop:      none,
		GotoBottom:   none,
	}
}
