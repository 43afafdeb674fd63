package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/topoview/internal/browse"
	"github.com/Mr-Dark-debug/topoview/pkg/timeutil"
)

// renderHeader produces the top bar:
//
//	TOPOVIEW │ site.xml │ 412 elements │ loaded 14:03:11
func (m Model) renderHeader() string {
	brand := headerBrandStyle.Render("TOPOVIEW")
	sep := headerSepStyle.Render(" │ ")

	parts := []string{brand}
	switch {
	case m.path == "":
		parts = append(parts, sep, headerMetaStyle.Render("no file"))
	default:
		parts = append(parts, sep, headerMetaStyle.Render(filepath.Base(m.path)))
		switch {
		case m.loadErr != nil:
			parts = append(parts, sep, errorTitleStyle.Render("invalid"))
		case m.model != nil:
			parts = append(parts, sep, headerMetaStyle.Render(
				fmt.Sprintf("%d elements", m.model.Document().Count())))
			parts = append(parts, sep, headerMetaStyle.Render(
				"loaded "+timeutil.FormatClock(m.loadedAt)))
		}
		if m.loading {
			parts = append(parts, sep, headerMetaStyle.Render("loading..."))
		}
	}
	if m.cfg.Watch && m.watcher != nil {
		parts = append(parts, sep, headerMetaStyle.Render("watching"))
	}

	return headerBarStyle.Width(m.width).MaxHeight(1).Render(strings.Join(parts, ""))
}

// renderMenu draws one button per table tab plus "View Tree" and returns
// their hit zones.
func (m Model) renderMenu() (string, []zone) {
	var (
		out   string
		zones []zone
		x     int
	)
	for i, e := range m.session.Menu(m.cfg.Labels) {
		style := menuItemStyle
		switch {
		case e.Active:
			style = menuActiveStyle
		case e.Tab < 0:
			style = menuTreeStyle
		}
		if i > 0 {
			out += " "
			x++
		}
		s := style.Render(e.Label)
		w := lipgloss.Width(s)
		zones = append(zones, zone{x0: x, x1: x + w, ev: e.EventFor()})
		out += s
		x += w
	}
	return out, zones
}

// renderFooter produces the status line with the short key help.
func (m Model) renderFooter() string {
	var left string
	if m.statusMsg != "" {
		if m.statusIsError {
			left = statusErrorStyle.Render(m.statusMsg)
		} else {
			left = statusStyle.Render(m.statusMsg)
		}
	}

	var right string
	if !m.help.ShowAll {
		right = m.help.ShortHelpView(m.activeHelp().ShortHelp())
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Background(colorBgSurface).
		Width(m.width).
		MaxHeight(1).
		Render(bar)
}

// activeHelp picks the bindings that apply in the current mode.
func (m Model) activeHelp() help.KeyMap {
	switch {
	case m.picking:
		return overlayHelp{k: m.keys, extra: []key.Binding{m.picker.KeyMap.Select, m.picker.KeyMap.Back}}
	case m.showReport, m.showDetail:
		return overlayHelp{k: m.keys, extra: []key.Binding{m.keys.Up, m.keys.Down}}
	case m.searching:
		return searchHelp{k: m.keys}
	case m.model != nil && m.session.Surface == browse.SurfaceTree:
		return treeHelp{k: m.keys, tree: m.tree.KeyMap}
	}
	return m.keys
}
