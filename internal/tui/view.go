package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/topoview/internal/browse"
)

// zone is a clickable span [x0, x1) on one screen line.
type zone struct {
	x0, x1 int
	ev     browse.Event
}

func hit(zones []zone, x int) (zone, bool) {
	for _, z := range zones {
		if x >= z.x0 && x < z.x1 {
			return z, true
		}
	}
	return zone{}, false
}

// layout records where the clickable parts of the last frame landed.
// Lines that are not on screen are -1.
type layout struct {
	menuY int
	menu  []zone
	rowsY int
	barY  int
	bar   []zone
	treeY int

	// treeEnd is the first line below the visible tree rows.
	treeEnd int
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (m Model) View() string {
	s, _ := m.compose()
	return s
}

// compose renders the frame and its hit layout together, so mouse
// handling always agrees with what was drawn.
func (m Model) compose() (string, layout) {
	lay := layout{menuY: -1, rowsY: -1, barY: -1, treeY: -1, treeEnd: -1}
	if m.width == 0 {
		return "Initializing...", lay
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	var fullHelp string
	if m.help.ShowAll {
		fullHelp = m.help.FullHelpView(m.activeHelp().FullHelp())
	}

	y := lipgloss.Height(header)
	var middle []string
	switch {
	case m.picking:
		middle = append(middle, m.renderPicker())
	case m.showReport:
		middle = append(middle, m.renderReport())
	case m.showDetail:
		middle = append(middle, m.renderDetailOverlay())
	default:
		if m.model != nil {
			menu, zones := m.renderMenu()
			lay.menuY, lay.menu = y, zones
			middle = append(middle, menu)
			y += lipgloss.Height(menu)
		}
		middle = append(middle, m.renderBody(&lay, y))
	}

	h := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if fullHelp != "" {
		h -= lipgloss.Height(fullHelp)
	}
	if h < 1 {
		h = 1
	}
	mid := lipgloss.NewStyle().Height(h).MaxHeight(h).Render(strings.Join(middle, "\n"))
	lay.clip(lipgloss.Height(header) + h)

	sections := []string{header, mid}
	if fullHelp != "" {
		sections = append(sections, fullHelp)
	}
	sections = append(sections, footer)
	return lipgloss.JoinVertical(lipgloss.Left, sections...), lay
}

// renderBody draws the active surface or one of the document-less
// states. y is the screen line the body starts on.
func (m Model) renderBody(lay *layout, y int) string {
	h := m.bodyHeight()
	switch {
	case m.model == nil && m.loadErr != nil:
		return m.renderInvalid(h)
	case m.model == nil && m.loading:
		return m.placeCenter(h, emptyStateStyle.Render("Loading..."))
	case m.model == nil:
		return m.placeCenter(h, emptyStateStyle.Render(
			"No file open.\n\nPress o to choose an XML topology file."))
	case m.session.Surface == browse.SurfaceTree:
		body, rowY := m.renderTreeBody()
		lay.treeY = y + rowY
		lay.treeEnd = y + lipgloss.Height(body)
		return body
	}

	body, tableY, barY, zones := m.renderTableBody()
	lay.barY, lay.bar = y+barY, zones
	if len(m.page.Rows) > 0 && len(m.page.Rows) <= m.table.Height() {
		lay.rowsY = y + tableY + lipgloss.Height(tableStyles().Header.Render("x"))
	}
	return body
}

// clip drops the zones that fall on or below line end, which the frame
// cuts off.
func (l *layout) clip(end int) {
	if l.menuY >= end {
		l.menuY, l.menu = -1, nil
	}
	if l.barY >= end {
		l.barY, l.bar = -1, nil
	}
	if l.rowsY >= end {
		l.rowsY = -1
	}
	if l.treeY >= end {
		l.treeY = -1
	}
	l.treeEnd = min(l.treeEnd, end)
}

// renderInvalid names the file and the parser message.
func (m Model) renderInvalid(h int) string {
	msg := lipgloss.JoinVertical(lipgloss.Center,
		errorTitleStyle.Render("Invalid file"),
		"",
		errorDetailStyle.Render(m.path),
		errorDetailStyle.Render(m.loadErr.Error()),
		"",
		emptyStateStyle.Render("Press o to open another file."),
	)
	return m.placeCenter(h, msg)
}

func (m Model) placeCenter(h int, s string) string {
	return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, s)
}

// ────────────────────────────────────────────────────────────
// Mouse
// ────────────────────────────────────────────────────────────

// handleMouse maps clicks on the menu and the pagination bar to the same
// events their keys produce.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showReport || m.showDetail {
		var cmd tea.Cmd
		m.pager, cmd = m.pager.Update(msg)
		return m, cmd
	}
	if m.picking || m.model == nil {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		up := msg.Button == tea.MouseButtonWheelUp
		if m.session.Surface == browse.SurfaceTree {
			k := tea.KeyMsg{Type: tea.KeyDown}
			if up {
				k = tea.KeyMsg{Type: tea.KeyUp}
			}
			m.tree, _ = m.tree.Update(k)
		} else if up {
			m.table.MoveUp(1)
		} else {
			m.table.MoveDown(1)
		}
		return m, nil
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	_, lay := m.compose()
	switch {
	case msg.Y == lay.menuY:
		if z, ok := hit(lay.menu, msg.X); ok {
			cmd := m.apply(z.ev)
			return m, cmd
		}
	case msg.Y == lay.barY:
		if z, ok := hit(lay.bar, msg.X); ok {
			cmd := m.apply(z.ev)
			return m, cmd
		}
	case lay.treeY >= 0 && msg.Y >= lay.treeY && msg.Y < lay.treeEnd:
		m.tree.ClickRow(msg.Y - lay.treeY)
	case lay.rowsY >= 0 && msg.Y >= lay.rowsY && msg.Y < lay.rowsY+len(m.page.Rows):
		m.table.SetCursor(msg.Y - lay.rowsY)
	}
	return m, nil
}
