package browse

import "github.com/Mr-Dark-debug/topoview/internal/viewmodel"

// TableState is the interaction state of one table tab.
type TableState struct {
	Term string
	Page int
}

// NewTableState returns the initial state: no search, first page.
func NewTableState() TableState {
	return TableState{Page: 1}
}

// Event is an input to a state transition.
type Event interface {
	isEvent()
}

// SearchChanged replaces the search term of the active table.
type SearchChanged struct{ Term string }

// Navigate presses a pagination control. Page is only read for ControlPage.
type Navigate struct {
	Control Control
	Page    int
}

// SelectTab activates the table tab at Index.
type SelectTab struct{ Index int }

// ShowTree replaces the active surface with the tree.
type ShowTree struct{}

func (SearchChanged) isEvent() {}
func (Navigate) isEvent()      {}
func (SelectTab) isEvent()     {}
func (ShowTree) isEvent()      {}

// Apply returns the table state after ev. A new term always resets the
// page to 1; disabled or unknown controls leave the state unchanged.
func (s TableState) Apply(tv *viewmodel.TableView, ev Event, opts Options) TableState {
	switch ev := ev.(type) {
	case SearchChanged:
		return TableState{Term: ev.Term, Page: 1}
	case Navigate:
		total := TotalPages(len(Filter(tv, s.Term)), opts.pageSize())
		for _, b := range Bar(s.Page, total, opts.window()) {
			if b.Control != ev.Control || b.Disabled {
				continue
			}
			if b.Control == ControlPage && b.Page != ev.Page {
				continue
			}
			s.Page = b.Page
			return s
		}
	}
	return s
}

// View is the projection of a table state: the rows of the current page
// plus everything needed to draw the pagination bar.
type View struct {
	Type       viewmodel.RecordType
	Columns    []string
	Rows       [][]string
	Records    []viewmodel.Record
	Matched    int
	Total      int
	Page       int
	TotalPages int
	Buttons    []Button
	Term       string
}

// Project derives the visible page for s.
func Project(tv *viewmodel.TableView, s TableState, opts Options) View {
	filtered := Filter(tv, s.Term)
	size := opts.pageSize()
	slice := Paginate(filtered, s.Page, size)

	rows := make([][]string, len(slice))
	for i, r := range slice {
		rows[i] = tv.Row(r)
	}

	total := TotalPages(len(filtered), size)
	return View{
		Type:       tv.Type,
		Columns:    tv.Columns,
		Rows:       rows,
		Records:    slice,
		Matched:    len(filtered),
		Total:      tv.Len(),
		Page:       s.Page,
		TotalPages: total,
		Buttons:    Bar(s.Page, total, opts.window()),
		Term:       s.Term,
	}
}

// Surface is what the presenter currently shows.
type Surface int

const (
	SurfaceTable Surface = iota
	SurfaceTree
)

// Session is the presenter state for one loaded model. A new load starts
// a new Session; nothing carries over.
type Session struct {
	Tabs    []viewmodel.RecordType
	Active  int
	Surface Surface
	Opts    Options

	tables []TableState
}

// NewSession starts on the first table tab.
func NewSession(m *viewmodel.Model, opts Options) Session {
	s := Session{Opts: opts, Surface: SurfaceTable}
	for _, tv := range m.Tables {
		s.Tabs = append(s.Tabs, tv.Type)
		s.tables = append(s.tables, NewTableState())
	}
	return s
}

// Table returns the state of tab i.
func (s Session) Table(i int) TableState {
	if i < 0 || i >= len(s.tables) {
		return NewTableState()
	}
	return s.tables[i]
}

// ActiveTable returns the state of the active tab and whether a table is
// currently shown.
func (s Session) ActiveTable() (TableState, bool) {
	if s.Surface != SurfaceTable || len(s.tables) == 0 {
		return TableState{}, false
	}
	return s.tables[s.Active], true
}

// Apply returns the session after ev. Table events go to the active tab
// and are ignored while the tree is shown.
func (s Session) Apply(m *viewmodel.Model, ev Event) Session {
	switch ev := ev.(type) {
	case SelectTab:
		if ev.Index >= 0 && ev.Index < len(s.Tabs) {
			s.Active = ev.Index
			s.Surface = SurfaceTable
		}
		return s
	case ShowTree:
		s.Surface = SurfaceTree
		return s
	}

	if s.Surface != SurfaceTable || len(s.tables) == 0 {
		return s
	}
	tv := m.Table(s.Tabs[s.Active])
	if tv == nil {
		return s
	}
	tables := make([]TableState, len(s.tables))
	copy(tables, s.tables)
	tables[s.Active] = tables[s.Active].Apply(tv, ev, s.Opts)
	s.tables = tables
	return s
}

// MenuEntry is one button of the tab menu.
type MenuEntry struct {
	Label  string
	Tab    int // -1 for the tree entry
	Active bool
}

// Menu lists the table tabs followed by "View Tree".
func (s Session) Menu(labels map[string]string) []MenuEntry {
	entries := make([]MenuEntry, 0, len(s.Tabs)+1)
	for i, t := range s.Tabs {
		entries = append(entries, MenuEntry{
			Label:  viewmodel.Label(t, labels),
			Tab:    i,
			Active: s.Surface == SurfaceTable && i == s.Active,
		})
	}
	entries = append(entries, MenuEntry{
		Label:  "View Tree",
		Tab:    -1,
		Active: s.Surface == SurfaceTree,
	})
	return entries
}

// EventFor maps a menu entry to the event selecting it.
func (e MenuEntry) EventFor() Event {
	if e.Tab < 0 {
		return ShowTree{}
	}
	return SelectTab{Index: e.Tab}
}
