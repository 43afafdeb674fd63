package tui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// openPicker shows the file picker, starting in the current file's
// directory when one is open.
func (m *Model) openPicker() tea.Cmd {
	dir := m.cfg.PickerDir()
	if m.path != "" {
		dir = filepath.Dir(m.path)
	}
	m.picker.CurrentDirectory = dir
	m.picking = true
	m.showReport = false
	m.showDetail = false
	return m.picker.Init()
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		cmd := m.startLoad(path)
		return m, cmd
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.setStatus(filepath.Base(path)+" is not an .xml file", true)
	}
	return m, cmd
}

func (m Model) renderPicker() string {
	title := overlayTitleStyle.Render("Open topology file")
	dir := headerMetaStyle.Render(m.picker.CurrentDirectory)
	return lipgloss.JoinVertical(lipgloss.Left, title+" "+dir, m.picker.View())
}
