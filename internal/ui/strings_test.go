package ui

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"ABC123", 10, "ABC123"},
		{"cam-north-entrance", 10, "cam-nor..."},
		{"abcdef", 3, "abc"},
		{"  padded  ", 0, "padded"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestTruncateMiddle_KeepsImageExtension(t *testing.T) {
	url := "https://cdn.example.com/scenes/2026/03/01/cam-north/0000012345.jpg"
	got := truncateMiddle(url, 30)
	if len([]rune(got)) > 30 {
		t.Fatalf("truncateMiddle length = %d, want <= 30 (%q)", len([]rune(got)), got)
	}
	if got[len(got)-4:] != ".jpg" {
		t.Fatalf("truncateMiddle = %q, want .jpg suffix", got)
	}
	if truncateMiddle("short.jpg", 30) != "short.jpg" {
		t.Fatalf("truncateMiddle changed a short value")
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q, want %q", got, "ab  ")
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight = %q, want unchanged", got)
	}
}

func TestTitleCase(t *testing.T) {
	if got := titleCase("reviewed"); got != "Reviewed" {
		t.Fatalf("titleCase = %q, want Reviewed", got)
	}
	if got := titleCase("no_plate_detected"); got != "No Plate Detected" {
		t.Fatalf("titleCase = %q, want No Plate Detected", got)
	}
}

func TestFormatClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	if got := formatClock(time.Time{}, now); got != "never" {
		t.Fatalf("formatClock(zero) = %q, want never", got)
	}
	if got := formatClock(now.Add(-10*time.Second), now); got != "11:59:50" {
		t.Fatalf("formatClock(10s) = %q, want 11:59:50", got)
	}
	if got := formatClock(now.Add(-5*time.Minute), now); got != "11:55:00 (5m ago)" {
		t.Fatalf("formatClock(5m) = %q", got)
	}
	if got := formatClock(now.Add(-3*time.Hour), now); got != "09:00:00 (3h ago)" {
		t.Fatalf("formatClock(3h) = %q", got)
	}
}

func TestFormatRowTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	if got := formatRowTime(now.Add(-time.Hour), now); got != "11:00:00" {
		t.Fatalf("formatRowTime(today) = %q, want 11:00:00", got)
	}
	if got := formatRowTime(now.AddDate(0, 0, -1), now); got != "Feb 28 12:00" {
		t.Fatalf("formatRowTime(yesterday) = %q, want Feb 28 12:00", got)
	}
	if got := formatRowTime(time.Time{}, now); got != "-" {
		t.Fatalf("formatRowTime(zero) = %q, want -", got)
	}
}
