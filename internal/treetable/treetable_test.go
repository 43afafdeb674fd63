package treetable

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sample() []Row {
	// Children listed before their parents on purpose.
	return []Row{
		{ID: "d1", ParentID: "s1", Cells: []string{"D1", "Address: 1"}},
		{ID: "s1", ParentID: "b1", Cells: []string{"A1", ""}},
		{ID: "b1", Cells: []string{"B1", "Type: X"}},
		{ID: "b2", Cells: []string{"B2", "Type: Y"}},
		{ID: "lost", ParentID: "nowhere", Cells: []string{"L", ""}},
	}
}

func TestNestingIndependentOfOrder(t *testing.T) {
	m := New([]string{"Node", "Details"}, sample(), WithExpanded(true))

	if got := m.Children("b1"); !reflect.DeepEqual(got, []string{"s1"}) {
		t.Errorf("expected b1 -> s1, got %v", got)
	}
	if got := m.Children("s1"); !reflect.DeepEqual(got, []string{"d1"}) {
		t.Errorf("expected s1 -> d1, got %v", got)
	}
	if m.Depth("d1") != 2 {
		t.Errorf("expected depth 2 for d1, got %d", m.Depth("d1"))
	}
	if m.Depth("lost") != 0 {
		t.Errorf("unknown parent must make a root, got depth %d", m.Depth("lost"))
	}
	want := []string{"b1", "s1", "d1", "b2", "lost"}
	if got := m.Visible(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected visible %v, got %v", want, got)
	}
}

func TestStartsCollapsed(t *testing.T) {
	m := New([]string{"Node", "Details"}, sample())
	want := []string{"b1", "b2", "lost"}
	if got := m.Visible(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected only roots %v, got %v", want, got)
	}

	m, _ = m.Update(keyMsg("right"))
	if got := m.Visible(); len(got) != 4 {
		t.Fatalf("expected b1 expanded (4 visible), got %v", got)
	}
	m, _ = m.Update(keyMsg("right"))
	if row, _ := m.Selected(); row.ID != "s1" {
		t.Fatalf("expected cursor on s1, got %s", row.ID)
	}
	m, _ = m.Update(keyMsg("left"))
	if row, _ := m.Selected(); row.ID != "b1" {
		t.Errorf("collapse on a leaf-like node must move to parent, got %s", row.ID)
	}
}

func TestExpandCollapseAll(t *testing.T) {
	m := New([]string{"Node", "Details"}, sample())
	m, _ = m.Update(keyMsg("E"))
	if len(m.Visible()) != 5 {
		t.Fatalf("expected all 5 rows visible, got %v", m.Visible())
	}
	m, _ = m.Update(keyMsg("G"))
	m, _ = m.Update(keyMsg("C"))
	if len(m.Visible()) != 3 {
		t.Fatalf("expected roots only, got %v", m.Visible())
	}
	if row, _ := m.Selected(); row.ID != "lost" {
		t.Errorf("expected cursor to stay on root 'lost', got %s", row.ID)
	}
}

func TestCycleIsPromoted(t *testing.T) {
	m := New(nil, []Row{
		{ID: "a", ParentID: "b", Cells: []string{"a"}},
		{ID: "b", ParentID: "a", Cells: []string{"b"}},
	}, WithExpanded(true))
	if got := m.Visible(); len(got) != 2 {
		t.Fatalf("expected both rows visible, got %v", got)
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", m.Len())
	}
}

func TestClickRow(t *testing.T) {
	m := New([]string{"Node", "Details"}, sample())
	m.SetSize(80, 10)
	m.ClickRow(1)
	if row, _ := m.Selected(); row.ID != "b2" {
		t.Fatalf("expected b2 selected, got %s", row.ID)
	}
	m.ClickRow(0)
	m.ClickRow(0)
	if len(m.Visible()) != 4 {
		t.Errorf("second click must toggle b1 open, got %v", m.Visible())
	}
}

func TestClickBelowBodyIgnored(t *testing.T) {
	m := New([]string{"Node", "Details"}, sample(), WithExpanded(true))
	m.SetSize(80, 3)
	m.ClickRow(3)
	if m.Cursor() != 0 {
		t.Errorf("click below the two body lines moved the cursor to %d", m.Cursor())
	}
	m.ClickRow(1)
	if m.Cursor() != 1 {
		t.Errorf("expected the second row selected, got %d", m.Cursor())
	}
}

func TestViewRendersHeaderAndConnectors(t *testing.T) {
	m := New([]string{"Node", "Details"}, sample(), WithExpanded(true))
	m.SetSize(80, 20)
	out := m.View()
	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected header + 5 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Node") || !strings.Contains(lines[0], "Details") {
		t.Errorf("missing header: %q", lines[0])
	}
	if !strings.Contains(out, "└─") || !strings.Contains(out, "Type: X") {
		t.Errorf("expected connector and detail text:\n%s", out)
	}
}

func TestEmpty(t *testing.T) {
	m := New([]string{"Node"}, nil, WithEmptyText("no bus units"))
	if !strings.Contains(m.View(), "no bus units") {
		t.Errorf("expected empty text, got %q", m.View())
	}
	if _, ok := m.Selected(); ok {
		t.Error("nothing should be selected")
	}
}
