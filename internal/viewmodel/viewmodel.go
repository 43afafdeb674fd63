// Package viewmodel derives the browsable view-model from a parsed
// topology document: flat per-type tables with a fixed column schema,
// and the bus unit -> sub-node -> display hierarchy.
package viewmodel

import (
	"github.com/Mr-Dark-debug/topoview/internal/document"
)

// RecordType is the element tag of a record.
type RecordType string

const (
	TypeChannel    RecordType = "CHANNEL"
	TypeDisplay    RecordType = "DISPLAY"
	TypeContainer  RecordType = "CONTAINER"
	TypeBusUnit    RecordType = "BUSUNIT"
	TypeSub3RS485  RecordType = "SUB3RS485"
	TypeSub3Module RecordType = "SUB3MODULE"
)

// TableTypes lists the record types shown as tables, in menu order.
var TableTypes = []RecordType{TypeChannel, TypeDisplay, TypeContainer}

// SubNodeTypes are the bus unit children that form the middle tree level.
var SubNodeTypes = []RecordType{TypeSub3RS485, TypeSub3Module}

// Attribute names used for tree construction.
const (
	AttrSerial  = "SERNUM"
	AttrType    = "TYP"
	AttrAddress = "ADRESSE"
	AttrSubC    = "SUBC"
)

// Attr is one attribute of a record.
type Attr = document.Attr

// Record is one element instance with its attributes as written.
type Record struct {
	Type  RecordType
	Attrs []Attr
}

// Get returns the attribute value, or "" when the record does not carry it.
func (r Record) Get(name string) string {
	for _, a := range r.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Has reports whether the record carries the attribute.
func (r Record) Has(name string) bool {
	for _, a := range r.Attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Names returns the record's attribute names in source order.
func (r Record) Names() []string {
	names := make([]string, len(r.Attrs))
	for i, a := range r.Attrs {
		names[i] = a.Name
	}
	return names
}

func newRecord(t RecordType, e *document.Element) Record {
	attrs := make([]Attr, len(e.Attrs))
	copy(attrs, e.Attrs)
	return Record{Type: t, Attrs: attrs}
}

func collect(doc *document.Document, t RecordType) []Record {
	elems := doc.ElementsByTag(string(t))
	if len(elems) == 0 {
		return nil
	}
	out := make([]Record, len(elems))
	for i, e := range elems {
		out[i] = newRecord(t, e)
	}
	return out
}

// Model is everything the presenter needs from one file load.
type Model struct {
	Source string
	Tables []*TableView
	doc    *document.Document
}

// Build derives the table views for doc. The tree is not cached on the
// model; call Tree for a fresh derivation.
func Build(doc *document.Document) *Model {
	return &Model{
		Source: doc.Source,
		Tables: BuildTableViews(doc),
		doc:    doc,
	}
}

// Tree rebuilds the hierarchy from the underlying document.
func (m *Model) Tree() []*TreeNode {
	return BuildTree(m.doc)
}

// Document returns the parsed document the model was built from.
func (m *Model) Document() *document.Document {
	return m.doc
}

// Table returns the view for t, or nil when t has no records.
func (m *Model) Table(t RecordType) *TableView {
	for _, tv := range m.Tables {
		if tv.Type == t {
			return tv
		}
	}
	return nil
}
