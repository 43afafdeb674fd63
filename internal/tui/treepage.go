package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/topoview/internal/treetable"
	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
)

var treeHeaders = []string{"Node", "Details"}

// buildTree derives the hierarchy afresh from the loaded document and
// hands it to the widget, collapsed.
func (m *Model) buildTree() {
	rows := viewmodel.TreeRows(m.model.Tree())
	trows := make([]treetable.Row, len(rows))
	for i, r := range rows {
		trows[i] = treetable.Row{
			ID:       r.ID,
			ParentID: r.ParentID,
			Cells:    []string{r.Label, r.Detail},
			Kind:     int(r.Kind),
		}
	}
	m.tree = treetable.New(treeHeaders, trows,
		treetable.WithStyles(treeStyles()),
		treetable.WithKindStyle(treeKindStyle),
		treetable.WithEmptyText("No bus units in this file."),
	)
	m.tree.SetSize(m.width, m.bodyHeight()-1)
}

func (m Model) renderTreeTitle() string {
	roots := m.model.Tree()
	orphans := len(viewmodel.OrphanDisplays(m.model.Document()))
	title := panelTitleStyle.Render("Topology") + "  " +
		headerMetaStyle.Render(fmt.Sprintf("%d bus units", len(roots)))
	if orphans > 0 {
		title += headerMetaStyle.Render(fmt.Sprintf("  %d displays without a sub-node", orphans))
	}
	return title
}

// renderTreeBody returns the body and the y offset of the first tree
// row relative to the body.
func (m Model) renderTreeBody() (string, int) {
	title := m.renderTreeTitle()
	view := m.tree.View()
	// The widget draws a one-line header above its rows.
	return lipgloss.JoinVertical(lipgloss.Left, title, view), lipgloss.Height(title) + 1
}
