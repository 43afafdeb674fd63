// Package browse holds the presenter's interaction state and the pure
// projections derived from it: search filtering, pagination and the
// page-button window. Nothing here renders; internal/tui draws the
// results and the CLI prints them.
package browse

import (
	"strconv"
	"strings"

	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
)

const (
	// DefaultPageSize is the number of rows per table page.
	DefaultPageSize = 15
	// DefaultWindow is the maximum number of numbered page buttons.
	DefaultWindow = 5
)

// Options tunes pagination. Zero values fall back to the defaults.
type Options struct {
	PageSize int
	Window   int
}

func (o Options) pageSize() int {
	if o.PageSize <= 0 {
		return DefaultPageSize
	}
	return o.PageSize
}

func (o Options) window() int {
	if o.Window <= 0 {
		return DefaultWindow
	}
	return o.Window
}

// Filter returns the records with at least one column value containing
// term, compared case-insensitively. An empty term keeps every record.
func Filter(tv *viewmodel.TableView, term string) []viewmodel.Record {
	if term == "" {
		return tv.Records
	}
	needle := strings.ToLower(term)
	out := make([]viewmodel.Record, 0, len(tv.Records))
	for _, r := range tv.Records {
		for _, cell := range tv.Row(r) {
			if strings.Contains(strings.ToLower(cell), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// TotalPages is ceil(n / size).
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns the 1-based page of records. Out-of-range pages are empty.
func Paginate(records []viewmodel.Record, page, size int) []viewmodel.Record {
	if page < 1 || size <= 0 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(records) {
		return nil
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// Window returns the numbered page buttons around current: it starts at
// max(1, current-width/2), holds at most width pages and never passes
// total. total == 0 yields no buttons.
func Window(current, total, width int) []int {
	start := current - width/2
	if start < 1 {
		start = 1
	}
	end := start + width - 1
	if end > total {
		end = total
	}
	var pages []int
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Control identifies a pagination button.
type Control int

const (
	ControlFirst Control = iota
	ControlPrev
	ControlPage
	ControlNext
	ControlLast
)

// Button is one rendered pagination control.
type Button struct {
	Control  Control
	Label    string
	Page     int // target page
	Disabled bool
	Current  bool
}

// Bar builds First, Previous, the numbered window, Next and Last for the
// given position. First/Previous are disabled on page 1; Next/Last when
// current >= total, which includes total == 0.
func Bar(current, total, width int) []Button {
	atStart := current <= 1
	atEnd := current >= total

	prev := current - 1
	if prev < 1 {
		prev = 1
	}
	next := current + 1
	if next > total {
		next = total
	}

	buttons := []Button{
		{Control: ControlFirst, Label: "First", Page: 1, Disabled: atStart},
		{Control: ControlPrev, Label: "Previous", Page: prev, Disabled: atStart},
	}
	for _, p := range Window(current, total, width) {
		buttons = append(buttons, Button{
			Control:  ControlPage,
			Label:    strconv.Itoa(p),
			Page:     p,
			Disabled: p == current,
			Current:  p == current,
		})
	}
	buttons = append(buttons,
		Button{Control: ControlNext, Label: "Next", Page: next, Disabled: atEnd},
		Button{Control: ControlLast, Label: "Last", Page: total, Disabled: atEnd},
	)
	return buttons
}
