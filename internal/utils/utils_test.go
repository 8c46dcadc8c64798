package utils

import (
	"testing"
	"time"
)

func TestIsISODate(t *testing.T) {
	cases := map[string]bool{
		"2025-03-01":  true,
		"2025-02-30":  false,
		"2025-3-1":    false,
		"":            false,
		" 2024-02-29": true,
	}
	for in, want := range cases {
		if got := IsISODate(in); got != want {
			t.Fatalf("IsISODate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStartOfDayAndSameDay(t *testing.T) {
	ts := time.Date(2025, 6, 1, 17, 45, 0, 0, time.Local)
	sod := StartOfDay(ts)
	if sod.Hour() != 0 || sod.Day() != 1 {
		t.Fatalf("unexpected start of day %v", sod)
	}
	if !SameDay(ts, sod) {
		t.Fatalf("expected same day")
	}
}

func TestStringHelpers(t *testing.T) {
	if got := NormalizeSpace("  a   b \t c "); got != "a b c" {
		t.Fatalf("NormalizeSpace = %q", got)
	}
	if got := StationCode(" cstm "); got != "CSTM" {
		t.Fatalf("StationCode = %q", got)
	}
	if !EqualFoldTrim(" Ravi ", "ravi") {
		t.Fatalf("EqualFoldTrim should match")
	}
	if got := FirstNonEmpty("", "  ", "x"); got != "x" {
		t.Fatalf("FirstNonEmpty = %q", got)
	}
}
