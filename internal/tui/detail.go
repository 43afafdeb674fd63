package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
	"github.com/Mr-Dark-debug/topoview/pkg/textutil"
)

// openDetail shows every attribute of the selected row, including the
// ones its table has no column for.
func (m *Model) openDetail() {
	i := m.table.Cursor()
	if m.model == nil || i < 0 || i >= len(m.page.Records) {
		return
	}
	m.showDetail = true
	m.pager.Width = m.width
	m.pager.Height = m.overlayHeight()
	m.pager.SetContent(renderRecordDetail(m.page.Records[i], m.page.Columns, m.width))
	m.pager.GotoTop()
}

// renderRecordDetail lists attributes in source order, then the columns
// the record lacks.
func renderRecordDetail(rec viewmodel.Record, columns []string, width int) string {
	inTable := make(map[string]bool, len(columns))
	labelW := 0
	for _, c := range columns {
		inTable[c] = true
		labelW = max(labelW, textutil.Width(c))
	}
	for _, a := range rec.Attrs {
		labelW = max(labelW, textutil.Width(a.Name))
	}

	var lines []string
	lines = append(lines, panelTitleStyle.Render(string(rec.Type)), "")

	shown, hidden := 0, 0
	for _, a := range rec.Attrs {
		row := detailRow(textutil.Fit(a.Name, labelW), textutil.Truncate(a.Value, width-labelW-4))
		if inTable[a.Name] {
			shown++
		} else {
			hidden++
			row += "  " + detailHiddenStyle.Render("(no column)")
		}
		lines = append(lines, row)
	}

	var missing []string
	for _, c := range columns {
		if !rec.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		lines = append(lines, "", detailSectionStyle.Render("Missing: "+strings.Join(missing, ", ")))
	}

	if total := shown + hidden; total > 0 {
		lines = append(lines, "", renderUsageBar("shown", shown, total, 20, colorGreen))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDetailOverlay() string {
	title := overlayTitleStyle.Render("Record")
	pct := headerMetaStyle.Render(percent(m.pager.ScrollPercent()))
	return lipgloss.JoinVertical(lipgloss.Left, title+" "+pct, m.pager.View())
}

// ── helpers ──

func detailRow(label, value string) string {
	return detailLabelStyle.Render(label) + "  " + detailValueStyle.Render(value)
}

func renderUsageBar(label string, count, total, barWidth int, color lipgloss.Color) string {
	if total == 0 {
		return ""
	}
	pct := count * 100 / total
	filled := barWidth * count / total
	if filled < 1 && count > 0 {
		filled = 1
	}
	empty := barWidth - filled

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		usageEmptyStyle.Render(strings.Repeat("░", empty))

	return fmt.Sprintf("%-8s %s %d%%", label, bar, pct)
}
