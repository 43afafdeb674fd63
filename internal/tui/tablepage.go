package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/topoview/internal/browse"
	"github.com/Mr-Dark-debug/topoview/pkg/textutil"
)

const minColumnWidth = 3

// syncTable projects the active tab and loads the page into the table
// widget. resetCursor moves the row cursor back to the first row.
func (m *Model) syncTable(resetCursor bool) {
	ts, ok := m.session.ActiveTable()
	if !ok {
		return
	}
	tv := m.model.Table(m.session.Tabs[m.session.Active])
	if tv == nil {
		return
	}
	m.page = browse.Project(tv, ts, m.session.Opts)

	rows := make([]table.Row, len(m.page.Rows))
	cells := make([][]string, len(m.page.Rows))
	for i, r := range m.page.Rows {
		row := make(table.Row, len(r))
		for j, c := range r {
			row[j] = textutil.OneLine(c)
		}
		rows[i] = row
		cells[i] = row
	}

	// Each cell carries one column of padding on either side.
	budget := m.width - 2*len(m.page.Columns)
	widths := textutil.ColumnWidths(m.page.Columns, cells, budget, 0, minColumnWidth)
	cols := make([]table.Column, len(m.page.Columns))
	for i, name := range m.page.Columns {
		cols[i] = table.Column{Title: name, Width: widths[i]}
	}

	// Rows must never be wider than the columns, so clear them before a
	// tab switch changes the column count.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if resetCursor || m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
	m.fitTable()
}

// fitTable sizes the table so header and rows together fill the body
// minus the search line and the pagination bar. The header's height
// depends on the columns, so it is measured rather than assumed.
func (m *Model) fitTable() {
	lines := m.bodyHeight() - 2
	m.table.SetHeight(lines)
	if over := lipgloss.Height(m.table.View()) - lines; over != 0 {
		m.table.SetHeight(max(lines-over, 1))
	}
}

// renderSearchLine shows the input while editing and the current term
// otherwise.
func (m Model) renderSearchLine() string {
	if m.searching {
		return m.search.View()
	}
	if m.page.Term == "" {
		return searchIdleStyle.Render("/ search")
	}
	return searchPromptStyle.Render("/ ") + m.page.Term
}

// renderBar draws the pagination controls and returns their hit zones.
func (m Model) renderBar() (string, []zone) {
	var (
		out   string
		zones []zone
		x     int
	)
	for _, b := range m.page.Buttons {
		style := pageButtonStyle
		switch {
		case b.Current:
			style = pageCurrentStyle
		case b.Disabled:
			style = pageDisabledStyle
		}
		s := style.Render(b.Label)
		w := lipgloss.Width(s)
		if !b.Disabled {
			zones = append(zones, zone{x0: x, x1: x + w, ev: browse.Navigate{Control: b.Control, Page: b.Page}})
		}
		out += s
		x += w
	}

	count := fmt.Sprintf("%d of %d records", m.page.Matched, m.page.Total)
	if m.page.TotalPages > 0 {
		count = fmt.Sprintf("page %d/%d  ", m.page.Page, m.page.TotalPages) + count
	}
	count = pageCountStyle.Render(count)
	gap := m.width - x - lipgloss.Width(count)
	if gap < 1 {
		gap = 1
	}
	return out + lipgloss.NewStyle().Width(gap).Render("") + count, zones
}

func (m Model) renderTableBody() (body string, tableY, barY int, bar []zone) {
	search := m.renderSearchLine()
	var grid string
	if len(m.page.Rows) == 0 {
		msg := "No records."
		if m.page.Term != "" {
			msg = fmt.Sprintf("No records match %q.", m.page.Term)
		}
		grid = lipgloss.Place(m.width, m.bodyHeight()-2, lipgloss.Center, lipgloss.Center,
			emptyStateStyle.Render(msg))
	} else {
		grid = m.table.View()
	}
	barLine, zones := m.renderBar()

	tableY = lipgloss.Height(search)
	barY = tableY + lipgloss.Height(grid)
	return lipgloss.JoinVertical(lipgloss.Left, search, grid, barLine), tableY, barY, zones
}
