package viewmodel

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/Mr-Dark-debug/topoview/internal/document"
	"pgregory.net/rapid"
)

// el builds an element from alternating name/value pairs.
func el(name string, kv ...string) *document.Element {
	e := &document.Element{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Attrs = append(e.Attrs, document.Attr{Name: kv[i], Value: kv[i+1]})
	}
	return e
}

func with(parent *document.Element, children ...*document.Element) *document.Element {
	parent.Children = append(parent.Children, children...)
	return parent
}

func doc(children ...*document.Element) *document.Document {
	return &document.Document{Root: with(el("CONFIG"), children...), Source: "test.xml"}
}

func TestBuildTableViewsOrderAndOmission(t *testing.T) {
	d := doc(
		el("CONTAINER", "ID", "c1"),
		el("CHANNEL", "ID", "ch1"),
		el("BUSUNIT", "SERNUM", "B1"),
	)
	views := BuildTableViews(d)
	if len(views) != 2 {
		t.Fatalf("expected 2 views (DISPLAY omitted), got %d", len(views))
	}
	if views[0].Type != TypeChannel || views[1].Type != TypeContainer {
		t.Errorf("expected CHANNEL then CONTAINER, got %s then %s", views[0].Type, views[1].Type)
	}
}

func TestColumnsFromFirstRecord(t *testing.T) {
	d := doc(
		el("CHANNEL", "NR", "1", "NAME", "north"),
		el("CHANNEL", "NR", "2", "NAME", "south", "EXTRA", "x"),
		el("CHANNEL", "NAME", "west"),
	)
	tv := BuildTableViews(d)[0]

	if want := []string{"NR", "NAME"}; !reflect.DeepEqual(tv.Columns, want) {
		t.Fatalf("expected columns %v, got %v", want, tv.Columns)
	}

	rows := tv.Rows()
	if len(rows[1]) != 2 {
		t.Errorf("extra attribute must not add a cell, got %v", rows[1])
	}
	if rows[2][0] != "" || rows[2][1] != "west" {
		t.Errorf("missing attribute must render empty, got %v", rows[2])
	}
}

func TestColumnsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "records")
		var elems []*document.Element
		var first []string
		for i := 0; i < n; i++ {
			names := rapid.SliceOfNDistinct(rapid.SampledFrom([]string{"A", "B", "C", "D", "E"}), 0, 5, rapid.ID[string]).Draw(t, fmt.Sprintf("names%d", i))
			e := el("DISPLAY")
			for _, name := range names {
				e.Attrs = append(e.Attrs, document.Attr{Name: name, Value: name + "v"})
			}
			if i == 0 {
				first = names
			}
			elems = append(elems, e)
		}
		tv := BuildTableViews(doc(elems...))[0]
		if len(tv.Columns) != len(first) {
			t.Fatalf("expected %d columns, got %d", len(first), len(tv.Columns))
		}
		for i := range first {
			if tv.Columns[i] != first[i] {
				t.Fatalf("column %d: expected %s, got %s", i, first[i], tv.Columns[i])
			}
		}
		for _, row := range tv.Rows() {
			if len(row) != len(tv.Columns) {
				t.Fatalf("row width %d differs from column count %d", len(row), len(tv.Columns))
			}
		}
	})
}

func TestBuildTreeScenario(t *testing.T) {
	d := doc(
		with(el("BUSUNIT", "SERNUM", "B1", "TYP", "X"), el("SUB3RS485", "ADRESSE", "A1")),
		el("DISPLAY", "SERNUM", "D1", "ADRESSE", "1", "SUBC", "A1"),
	)
	roots := BuildTree(d)
	if len(roots) != 1 || roots[0].Key != "B1" {
		t.Fatalf("expected single root B1, got %+v", roots)
	}
	if roots[0].Detail() != "Type: X" {
		t.Errorf("expected bus detail 'Type: X', got %q", roots[0].Detail())
	}
	subs := roots[0].Children
	if len(subs) != 1 || subs[0].Key != "A1" || subs[0].Detail() != "" {
		t.Fatalf("expected sub node A1 with empty detail, got %+v", subs)
	}
	disp := subs[0].Children
	if len(disp) != 1 || disp[0].Key != "D1" {
		t.Fatalf("expected display D1, got %+v", disp)
	}
	if disp[0].Detail() != "Address: 1" {
		t.Errorf("expected display detail 'Address: 1', got %q", disp[0].Detail())
	}
}

func TestBuildTreeIgnoresNestedSubNodes(t *testing.T) {
	// Only direct children count; a SUB3MODULE nested deeper is not a sub node.
	d := doc(
		with(el("BUSUNIT", "SERNUM", "B1"),
			el("SUB3MODULE", "ADRESSE", "M1"),
			with(el("GROUP"), el("SUB3RS485", "ADRESSE", "deep"))),
	)
	roots := BuildTree(d)
	if len(roots[0].Children) != 1 || roots[0].Children[0].Key != "M1" {
		t.Errorf("expected only direct child M1, got %+v", roots[0].Children)
	}
}

func TestBuildTreeSharedAddress(t *testing.T) {
	d := doc(
		with(el("BUSUNIT", "SERNUM", "B1"), el("SUB3RS485", "ADRESSE", "7")),
		with(el("BUSUNIT", "SERNUM", "B2"), el("SUB3MODULE", "ADRESSE", "7")),
		el("DISPLAY", "SERNUM", "D1", "SUBC", "7"),
	)
	roots := BuildTree(d)
	for _, r := range roots {
		if len(r.Children[0].Children) != 1 {
			t.Errorf("bus %s: display must attach to every matching sub node", r.Key)
		}
	}

	rows := TreeRows(roots)
	ids := make(map[string]bool)
	for _, row := range rows {
		if ids[row.ID] {
			t.Errorf("duplicate row id %s", row.ID)
		}
		ids[row.ID] = true
	}
}

func TestOrphanDisplays(t *testing.T) {
	d := doc(
		with(el("BUSUNIT", "SERNUM", "B1"), el("SUB3RS485", "ADRESSE", "A1")),
		el("DISPLAY", "SERNUM", "D1", "SUBC", "A1"),
		el("DISPLAY", "SERNUM", "D2", "SUBC", "ZZ"),
		el("DISPLAY", "SERNUM", "D3"),
	)
	orphans := OrphanDisplays(d)
	if len(orphans) != 2 {
		t.Fatalf("expected 2 orphans, got %d", len(orphans))
	}
	if orphans[0].Get("SERNUM") != "D2" || orphans[1].Get("SERNUM") != "D3" {
		t.Errorf("unexpected orphans %+v", orphans)
	}
}

func TestTreeRowsParentLinkProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		addrs := []string{"A", "B", "C", "D"}
		var children []*document.Element

		nBus := rapid.IntRange(0, 3).Draw(t, "bus")
		for i := 0; i < nBus; i++ {
			bus := el("BUSUNIT", "SERNUM", fmt.Sprintf("B%d", i), "TYP", "T")
			nSub := rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("subs%d", i))
			for j := 0; j < nSub; j++ {
				tag := rapid.SampledFrom([]string{"SUB3RS485", "SUB3MODULE"}).Draw(t, "tag")
				addr := rapid.SampledFrom(addrs).Draw(t, "addr")
				with(bus, el(tag, "ADRESSE", addr))
			}
			children = append(children, bus)
		}
		nDisp := rapid.IntRange(0, 6).Draw(t, "displays")
		for k := 0; k < nDisp; k++ {
			subc := rapid.SampledFrom(append(addrs, "none")).Draw(t, "subc")
			children = append(children, el("DISPLAY", "SERNUM", fmt.Sprintf("D%d", k), "ADRESSE", "1", "SUBC", subc))
		}

		rows := TreeRows(BuildTree(doc(children...)))
		byID := make(map[string]TreeRow)
		for _, r := range rows {
			byID[r.ID] = r
		}
		for _, r := range rows {
			if r.Kind != KindDisplay {
				continue
			}
			parent, ok := byID[r.ParentID]
			if !ok || parent.Kind != KindSubNode {
				t.Fatalf("display row %s has no sub node parent", r.ID)
			}
			subc := ""
			for _, c := range children {
				if c.Name == "DISPLAY" && c.Attr("SERNUM") == r.Key {
					subc = c.Attr("SUBC")
				}
			}
			if subc != parent.Key {
				t.Fatalf("display %s (SUBC %s) placed under sub node %s", r.Key, subc, parent.Key)
			}
		}
	})
}

func TestLabel(t *testing.T) {
	if got := Label(TypeChannel, nil); got != "Controllers" {
		t.Errorf("expected Controllers, got %s", got)
	}
	if got := Label(TypeContainer, nil); got != "Unassigned displays" {
		t.Errorf("expected Unassigned displays, got %s", got)
	}
	if got := Label(RecordType("GATEWAY"), nil); got != "GATEWAY" {
		t.Errorf("expected raw fallback, got %s", got)
	}
	if got := Label(TypeDisplay, map[string]string{"DISPLAY": "Panels"}); got != "Panels" {
		t.Errorf("expected override Panels, got %s", got)
	}
}

func TestModelTreeIsFresh(t *testing.T) {
	d := doc(with(el("BUSUNIT", "SERNUM", "B1"), el("SUB3RS485", "ADRESSE", "A1")))
	m := Build(d)
	a, b := m.Tree(), m.Tree()
	if a[0] == b[0] {
		t.Error("expected a new tree on every call")
	}
	if m.Table(TypeChannel) != nil {
		t.Error("expected no CHANNEL table")
	}
}
