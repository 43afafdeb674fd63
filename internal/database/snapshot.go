package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
)

// ============================================================
// Domain Models
// ============================================================

// Snapshot is one frozen file load.
type Snapshot struct {
	UID       string // stable across database files; assigned on save when empty
	Source    string
	CreatedAt time.Time
	Elements  int
	Tables    []Table
	TreeRows  []TreeRow
}

// Table is one table tab with its records.
type Table struct {
	Type    string
	Label   string
	Columns []string
	Records []Record
}

// Attr is one stored attribute.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is one stored element, attributes in source order.
type Record struct {
	Type     string `json:"type"`
	Position int    `json:"position"`
	Attrs    []Attr `json:"attrs"`
}

// Get returns the value of name, or "".
func (r *Record) Get(name string) string {
	for _, a := range r.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// TreeRow is one stored tree widget row.
type TreeRow struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	Kind     string `json:"kind"`
	Key      string `json:"key"`
	Label    string `json:"label"`
	Detail   string `json:"detail"`
}

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	ID        int64     `json:"id"`
	UID       string    `json:"uid"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	Elements  int       `json:"elements"`
}

// TableInfo describes a stored table tab.
type TableInfo struct {
	Type    string   `json:"type"`
	Label   string   `json:"label"`
	Columns []string `json:"columns"`
	Records int      `json:"records"`
}

// NewSnapshot freezes m. The tree is derived once, at call time.
func NewSnapshot(m *viewmodel.Model, labels map[string]string, now time.Time) *Snapshot {
	snap := &Snapshot{
		UID:       uuid.NewString(),
		Source:    m.Source,
		CreatedAt: now,
		Elements:  m.Document().Count(),
	}
	for _, tv := range m.Tables {
		t := Table{
			Type:    string(tv.Type),
			Label:   viewmodel.Label(tv.Type, labels),
			Columns: append([]string(nil), tv.Columns...),
			Records: make([]Record, len(tv.Records)),
		}
		for i, r := range tv.Records {
			attrs := make([]Attr, len(r.Attrs))
			for j, a := range r.Attrs {
				attrs[j] = Attr{Name: a.Name, Value: a.Value}
			}
			t.Records[i] = Record{Type: t.Type, Position: i, Attrs: attrs}
		}
		snap.Tables = append(snap.Tables, t)
	}
	for _, r := range viewmodel.TreeRows(m.Tree()) {
		snap.TreeRows = append(snap.TreeRows, TreeRow{
			ID:       r.ID,
			ParentID: r.ParentID,
			Kind:     r.KindName,
			Key:      r.Key,
			Label:    r.Label,
			Detail:   r.Detail,
		})
	}
	return snap
}
