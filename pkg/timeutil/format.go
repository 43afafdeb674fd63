// Package timeutil formats load times and timestamps for the status line,
// the CLI and diagnostics reports.
package timeutil

import (
	"fmt"
	"time"
)

// FormatClock formats t as "HH:MM:SS" for the status line.
func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}

// FormatTimestamp formats t as RFC 3339 in UTC, as stored in reports and
// snapshots.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimestamp reverses FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// FormatDuration formats a duration for humans.
// Examples: "850µs", "450ms", "1.2s", "2m 15.3s"
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	seconds := d.Seconds()
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	minutes := int(seconds / 60)
	remaining := seconds - float64(minutes*60)
	return fmt.Sprintf("%dm %.1fs", minutes, remaining)
}

// RelativeTime returns a human-readable age relative to now.
// Examples: "just now", "5s ago", "2m ago", "1h ago"
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Second:
		return "just now"
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
