// Package textutil holds terminal text helpers measured in display cells,
// so wide and combining characters in attribute values line up.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Truncate cuts s to width cells, ending in "…" when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// Fit truncates or right-pads s to exactly width cells.
func Fit(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// Width is the display width of s.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// OneLine collapses newlines and tabs so a value fits a table cell.
func OneLine(s string) string {
	if !strings.ContainsAny(s, "\n\r\t") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ColumnWidths sizes columns to their widest cell, then shrinks the widest
// columns until the row fits total cells including gap cells between
// columns. No column goes below min.
func ColumnWidths(header []string, rows [][]string, total, gap, min int) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = Width(h)
	}
	for _, r := range rows {
		for i := 0; i < len(widths) && i < len(r); i++ {
			if w := Width(OneLine(r[i])); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < min {
			widths[i] = min
		}
	}
	if total <= 0 || len(widths) == 0 {
		return widths
	}
	budget := total - gap*(len(widths)-1)
	for sum(widths) > budget {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= min {
			break
		}
		widths[widest]--
	}
	return widths
}

func sum(ws []int) int {
	n := 0
	for _, w := range ws {
		n += w
	}
	return n
}
