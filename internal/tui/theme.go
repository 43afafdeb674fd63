package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/topoview/internal/treetable"
	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
)

// ────────────────────────────────────────────────────────────
// Color Palette
// ────────────────────────────────────────────────────────────
//
// All colors are defined here. No ad-hoc color literals anywhere.

var (
	// Base
	colorBgPanel   = lipgloss.Color("#161b22")
	colorBgSurface = lipgloss.Color("#1c2128")

	// Text
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	// Accents
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")
	colorPurple = lipgloss.Color("#bc8cff")

	// Structural
	colorDivider   = lipgloss.Color("#30363d")
	colorHighlight = lipgloss.Color("#1f6feb")
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// Tab menu
var (
	menuItemStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Padding(0, 1)

	menuActiveStyle = lipgloss.NewStyle().
			Background(colorHighlight).
			Foreground(colorText).
			Bold(true).
			Padding(0, 1)

	menuTreeStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Padding(0, 1)
)

// Search line
var (
	searchPromptStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)

	searchIdleStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

// Pagination bar
var (
	pageButtonStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(0, 1)

	pageCurrentStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(colorText).
				Bold(true).
				Padding(0, 1)

	pageDisabledStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Padding(0, 1)

	pageCountStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// Tree kinds
var (
	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	treeBusStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	treeSubStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	treeDisplayStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	treeBranchStyle = lipgloss.NewStyle().
			Foreground(colorDivider)
)

// Record detail
var (
	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorBlue)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorText)

	detailHiddenStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Italic(true)

	detailSectionStyle = lipgloss.NewStyle().
				Foreground(colorTextDim)

	usageEmptyStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

// Footer / status bar
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Background(colorBgSurface).
				Bold(true).
				Padding(0, 1)
)

// Empty, loading and error states
var (
	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Italic(true)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	errorDetailStyle = lipgloss.NewStyle().
				Foreground(colorTextDim)

	overlayTitleStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true).
				Background(colorBgPanel).
				Padding(0, 1)
)

// tableStyles adapts the bubbles table to the palette.
func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Foreground(colorBlue).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorDivider).
		BorderBottom(true)
	s.Cell = s.Cell.Foreground(colorText)
	s.Selected = s.Selected.
		Foreground(colorText).
		Background(colorHighlight).
		Bold(true)
	return s
}

func treeStyles() treetable.Styles {
	s := treetable.DefaultStyles()
	s.Header = s.Header.Foreground(colorBlue).Bold(true)
	s.Cell = s.Cell.Foreground(colorText)
	s.Selected = s.Selected.Background(colorHighlight).Foreground(colorText).Bold(true)
	s.Branch = treeBranchStyle
	s.Indicator = s.Indicator.Foreground(colorTextDim)
	s.Empty = emptyStateStyle
	return s
}

func treeKindStyle(kind int) lipgloss.Style {
	switch viewmodel.NodeKind(kind) {
	case viewmodel.KindBusUnit:
		return treeBusStyle
	case viewmodel.KindSubNode:
		return treeSubStyle
	case viewmodel.KindDisplay:
		return treeDisplayStyle
	default:
		return lipgloss.NewStyle()
	}
}
