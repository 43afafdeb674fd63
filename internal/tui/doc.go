// Package tui implements the topoview terminal user interface.
//
// It is built with Charmbracelet's BubbleTea, Lipgloss and Bubbles.
// Browsing state is a browse.Session; every key, click and reload is an
// event applied to it, after which the widgets are refreshed from the
// session's projection.
//
// Component architecture:
//
//	model.go     root model, message routing, Init/Update
//	load.go      file loading and watching, sequence-numbered
//	theme.go     centralized color + style definitions
//	keys.go      key bindings and help key maps
//	header.go    top bar, tab menu, status line
//	view.go      frame composition and mouse hit-testing
//	tablepage.go table surface: search, body, pagination bar
//	treepage.go  tree surface over the treetable widget
//	detail.go    full attribute list of one record
//	report.go    diagnostics report overlay
//	picker.go    in-app file picker
package tui
