package viewmodel

import "github.com/Mr-Dark-debug/topoview/internal/document"

// TableView is the flat projection of all records of one type.
// Columns come from the first record and stay fixed for every row.
type TableView struct {
	Type    RecordType
	Columns []string
	Records []Record
}

// Row renders a record against the view's columns. Attributes the record
// lacks become "", attributes beyond the columns are dropped.
func (tv *TableView) Row(r Record) []string {
	row := make([]string, len(tv.Columns))
	for i, c := range tv.Columns {
		row[i] = r.Get(c)
	}
	return row
}

// Rows renders every record of the view.
func (tv *TableView) Rows() [][]string {
	rows := make([][]string, len(tv.Records))
	for i, r := range tv.Records {
		rows[i] = tv.Row(r)
	}
	return rows
}

// Len returns the number of records.
func (tv *TableView) Len() int {
	return len(tv.Records)
}

// BuildTableViews collects CHANNEL, DISPLAY and CONTAINER elements into
// one view per type, skipping types without elements.
func BuildTableViews(doc *document.Document) []*TableView {
	var views []*TableView
	for _, t := range TableTypes {
		records := collect(doc, t)
		if len(records) == 0 {
			continue
		}
		views = append(views, &TableView{
			Type:    t,
			Columns: records[0].Names(),
			Records: records,
		})
	}
	return views
}
