package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/topoview/internal/analysis"
	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
	"github.com/Mr-Dark-debug/topoview/pkg/textutil"
)

const reportMinWrap = 40

// openReport shows the diagnostics overlay and renders it off the loop.
func (m *Model) openReport() tea.Cmd {
	if m.model == nil {
		m.setStatus("Open a file to see its report", true)
		return nil
	}
	m.showReport = true
	m.showDetail = false
	m.picking = false
	m.pager.Width = m.width
	m.pager.Height = m.overlayHeight()
	m.pager.SetContent(emptyStateStyle.Render("Analyzing..."))
	return renderReport(m.model, m.cfg.Labels, m.width, m.loadSeq)
}

// renderReport builds the markdown report and renders it with glamour.
// A renderer failure falls back to the raw markdown.
func renderReport(vm *viewmodel.Model, labels map[string]string, width, seq int) tea.Cmd {
	return func() tea.Msg {
		a := analysis.NewAnalyzer(vm, analysis.WithLabels(labels))
		md := a.FormatReport(a.FullAnalysis())

		wrap := width - 4
		if wrap < reportMinWrap {
			wrap = reportMinWrap
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return reportReadyMsg{seq: seq, content: md, err: err}
		}
		out, err := r.Render(md)
		if err != nil {
			return reportReadyMsg{seq: seq, content: md, err: err}
		}
		return reportReadyMsg{seq: seq, content: out}
	}
}

func (m Model) renderReport() string {
	title := overlayTitleStyle.Render("Diagnostics")
	pct := headerMetaStyle.Render(percent(m.pager.ScrollPercent()))
	return lipgloss.JoinVertical(lipgloss.Left, title+" "+pct, m.pager.View())
}

func percent(f float64) string {
	return fmt.Sprintf("%d%%", textutil.Clamp(int(f*100+0.5), 0, 100))
}
