package timeutil

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		850 * time.Microsecond:    "850µs",
		450 * time.Millisecond:    "450ms",
		1200 * time.Millisecond:   "1.2s",
		135300 * time.Millisecond: "2m 15.3s",
	}
	for d, want := range cases {
		if got := FormatDuration(d); got != want {
			t.Errorf("FormatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := map[time.Duration]string{
		0:               "just now",
		5 * time.Second: "5s ago",
		2 * time.Minute: "2m ago",
		3 * time.Hour:   "3h ago",
		50 * time.Hour:  "2d ago",
	}
	for ago, want := range cases {
		if got := RelativeTime(now.Add(-ago), now); got != want {
			t.Errorf("RelativeTime(-%v) = %q, want %q", ago, got, want)
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	got, err := ParseTimestamp(FormatTimestamp(ts))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(ts) {
		t.Errorf("expected %v, got %v", ts, got)
	}
}
