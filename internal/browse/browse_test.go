package browse

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/Mr-Dark-debug/topoview/internal/document"
	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
	"pgregory.net/rapid"
)

func channels(n int) *viewmodel.Model {
	root := &document.Element{Name: "CONFIG"}
	for i := 0; i < n; i++ {
		root.Children = append(root.Children, &document.Element{
			Name: "CHANNEL",
			Attrs: []document.Attr{
				{Name: "NR", Value: fmt.Sprintf("%d", i+1)},
				{Name: "NAME", Value: fmt.Sprintf("Line-%02d", i+1)},
			},
		})
	}
	return viewmodel.Build(&document.Document{Root: root, Source: "test.xml"})
}

func TestScenarioTwentyChannels(t *testing.T) {
	m := channels(20)
	s := NewSession(m, Options{})

	menu := s.Menu(nil)
	if len(menu) != 2 || menu[0].Label != "Controllers" || menu[1].Label != "View Tree" {
		t.Fatalf("unexpected menu %+v", menu)
	}
	if !menu[0].Active || menu[1].Active {
		t.Errorf("expected Controllers active, got %+v", menu)
	}

	tv := m.Table(viewmodel.TypeChannel)
	v := Project(tv, s.Table(0), s.Opts)
	if len(v.Rows) != 15 || v.TotalPages != 2 {
		t.Fatalf("page 1: expected 15 rows of 2 pages, got %d rows of %d", len(v.Rows), v.TotalPages)
	}

	s = s.Apply(m, Navigate{Control: ControlNext})
	v = Project(tv, s.Table(0), s.Opts)
	if v.Page != 2 || len(v.Rows) != 5 {
		t.Fatalf("page 2: expected 5 rows, got page %d with %d rows", v.Page, len(v.Rows))
	}
	for _, b := range v.Buttons {
		if (b.Control == ControlNext || b.Control == ControlLast) && !b.Disabled {
			t.Errorf("%s must be disabled on the last page", b.Label)
		}
	}
}

func TestScenarioNoMatches(t *testing.T) {
	m := channels(30)
	tv := m.Table(viewmodel.TypeChannel)
	s := NewTableState().Apply(tv, SearchChanged{Term: "no-such-value"}, Options{})
	v := Project(tv, s, Options{})

	if len(v.Rows) != 0 || v.TotalPages != 0 || v.Matched != 0 {
		t.Fatalf("expected empty projection, got %d rows, %d pages", len(v.Rows), v.TotalPages)
	}
	for _, b := range v.Buttons {
		if b.Control == ControlPage {
			t.Errorf("expected no numbered buttons, got page %d", b.Page)
		}
		if !b.Disabled {
			t.Errorf("%s must be disabled with no matches", b.Label)
		}
	}

	// Pressing disabled controls changes nothing.
	for _, c := range []Control{ControlFirst, ControlPrev, ControlNext, ControlLast} {
		if got := s.Apply(tv, Navigate{Control: c}, Options{}); got != s {
			t.Errorf("control %d moved state from %+v to %+v", c, s, got)
		}
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	m := channels(12)
	tv := m.Table(viewmodel.TypeChannel)
	got := Filter(tv, "LINE-1")
	// Line-10, Line-11 and Line-12; Line-01 does not contain "line-1".
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
}

func TestSearchIgnoresDroppedAttributes(t *testing.T) {
	root := &document.Element{Name: "R", Children: []*document.Element{
		{Name: "CHANNEL", Attrs: []document.Attr{{Name: "A", Value: "x"}}},
		{Name: "CHANNEL", Attrs: []document.Attr{{Name: "A", Value: "y"}, {Name: "HIDDEN", Value: "needle"}}},
	}}
	m := viewmodel.Build(&document.Document{Root: root})
	if got := Filter(m.Table(viewmodel.TypeChannel), "needle"); len(got) != 0 {
		t.Errorf("search must only look at rendered columns, got %d matches", len(got))
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		current, total int
		want           []int
	}{
		{1, 0, nil},
		{1, 1, []int{1}},
		{1, 10, []int{1, 2, 3, 4, 5}},
		{2, 10, []int{1, 2, 3, 4, 5}},
		{5, 10, []int{3, 4, 5, 6, 7}},
		{9, 10, []int{7, 8, 9, 10}},
		{10, 10, []int{8, 9, 10}},
		{3, 4, []int{1, 2, 3, 4}},
	}
	for _, c := range cases {
		got := Window(c.current, c.total, DefaultWindow)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Window(%d, %d) = %v, want %v", c.current, c.total, got, c.want)
		}
	}
}

func TestBarFirstPage(t *testing.T) {
	bar := Bar(1, 3, DefaultWindow)
	labels := make([]string, len(bar))
	for i, b := range bar {
		labels[i] = b.Label
	}
	want := []string{"First", "Previous", "1", "2", "3", "Next", "Last"}
	if !reflect.DeepEqual(labels, want) {
		t.Fatalf("expected %v, got %v", want, labels)
	}
	if !bar[0].Disabled || !bar[1].Disabled {
		t.Error("First/Previous must be disabled on page 1")
	}
	if !bar[2].Current || !bar[2].Disabled {
		t.Error("current page button must be marked and disabled")
	}
	if bar[5].Disabled || bar[6].Disabled || bar[6].Page != 3 {
		t.Errorf("Next/Last must be enabled, Last targeting page 3: %+v %+v", bar[5], bar[6])
	}
}

func TestNavigatePageButton(t *testing.T) {
	m := channels(100)
	tv := m.Table(viewmodel.TypeChannel)
	s := NewTableState()

	s = s.Apply(tv, Navigate{Control: ControlPage, Page: 3}, Options{})
	if s.Page != 3 {
		t.Fatalf("expected page 3, got %d", s.Page)
	}
	// Page 7 is outside the window [1..5] around page 3.
	if got := s.Apply(tv, Navigate{Control: ControlPage, Page: 7}, Options{}); got.Page != 3 {
		t.Errorf("expected out-of-window page to be ignored, got %d", got.Page)
	}
	s = s.Apply(tv, Navigate{Control: ControlLast}, Options{})
	if s.Page != 7 {
		t.Errorf("expected last page 7, got %d", s.Page)
	}
	s = s.Apply(tv, Navigate{Control: ControlPrev}, Options{})
	if s.Page != 6 {
		t.Errorf("expected page 6, got %d", s.Page)
	}
	s = s.Apply(tv, Navigate{Control: ControlFirst}, Options{})
	if s.Page != 1 {
		t.Errorf("expected page 1, got %d", s.Page)
	}
}

func TestSessionTreeAndBack(t *testing.T) {
	m := channels(40)
	s := NewSession(m, Options{})
	s = s.Apply(m, Navigate{Control: ControlNext})
	s = s.Apply(m, ShowTree{})

	if _, ok := s.ActiveTable(); ok {
		t.Fatal("no table should be active while the tree is shown")
	}
	menu := s.Menu(nil)
	if !menu[len(menu)-1].Active {
		t.Error("View Tree must be marked active")
	}

	// Table events are ignored on the tree surface.
	s = s.Apply(m, SearchChanged{Term: "x"})

	s = s.Apply(m, menu[0].EventFor())
	ts, ok := s.ActiveTable()
	if !ok {
		t.Fatal("expected table surface after selecting a tab")
	}
	if ts.Page != 2 || ts.Term != "" {
		t.Errorf("expected tab state to survive the tree visit, got %+v", ts)
	}
}

func TestSessionIsValue(t *testing.T) {
	m := channels(40)
	before := NewSession(m, Options{})
	after := before.Apply(m, Navigate{Control: ControlNext})
	if before.Table(0).Page != 1 {
		t.Errorf("Apply mutated the previous session: page %d", before.Table(0).Page)
	}
	if after.Table(0).Page != 2 {
		t.Errorf("expected page 2, got %d", after.Table(0).Page)
	}
}

func genTable(t *rapid.T) *viewmodel.TableView {
	n := rapid.IntRange(0, 80).Draw(t, "n")
	root := &document.Element{Name: "R"}
	for i := 0; i < n; i++ {
		root.Children = append(root.Children, &document.Element{
			Name: "DISPLAY",
			Attrs: []document.Attr{
				{Name: "SERNUM", Value: rapid.StringMatching(`[A-Za-z0-9]{0,4}`).Draw(t, "sernum")},
				{Name: "SUBC", Value: rapid.StringMatching(`[a-c]{0,2}`).Draw(t, "subc")},
			},
		})
	}
	tv := viewmodel.Build(&document.Document{Root: root}).Table(viewmodel.TypeDisplay)
	if tv == nil {
		tv = &viewmodel.TableView{Type: viewmodel.TypeDisplay}
	}
	return tv
}

func TestFilterProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tv := genTable(t)
		term := rapid.StringMatching(`[A-Za-z0-9]{0,3}`).Draw(t, "term")

		if got := Filter(tv, ""); len(got) != tv.Len() {
			t.Fatalf("empty term kept %d of %d records", len(got), tv.Len())
		}

		once := Filter(tv, term)
		if len(once) > tv.Len() {
			t.Fatalf("filter grew the set: %d > %d", len(once), tv.Len())
		}
		sub := &viewmodel.TableView{Type: tv.Type, Columns: tv.Columns, Records: once}
		twice := Filter(sub, term)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("filter is not idempotent for %q", term)
		}

		// Subset, in order.
		j := 0
		for _, r := range once {
			for j < len(tv.Records) && !reflect.DeepEqual(tv.Records[j], r) {
				j++
			}
			if j == len(tv.Records) {
				t.Fatalf("record %+v not in the source set", r)
			}
			j++
		}
	})
}

func TestPageSliceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tv := genTable(t)
		size := DefaultPageSize
		total := TotalPages(tv.Len(), size)
		for p := 1; p <= total; p++ {
			got := len(Paginate(tv.Records, p, size))
			want := size
			if p == total {
				want = tv.Len() - size*(total-1)
			}
			if got != want {
				t.Fatalf("page %d/%d: expected %d rows, got %d", p, total, want, got)
			}
		}
		if len(Paginate(tv.Records, total+1, size)) != 0 {
			t.Fatal("page past the end must be empty")
		}
	})
}

func TestSearchResetsPageProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tv := genTable(t)
		s := NewTableState()
		steps := rapid.IntRange(0, 10).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			c := rapid.SampledFrom([]Control{ControlFirst, ControlPrev, ControlNext, ControlLast}).Draw(t, "control")
			s = s.Apply(tv, Navigate{Control: c}, Options{})
		}
		term := rapid.StringMatching(`[a-c]{0,2}`).Draw(t, "term")
		s = s.Apply(tv, SearchChanged{Term: term}, Options{})
		if s.Page != 1 || s.Term != term {
			t.Fatalf("expected page 1 with term %q, got %+v", term, s)
		}
	})
}
