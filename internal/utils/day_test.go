package utils

import (
	"errors"
	"testing"
	"time"
)

func TestStartOfDay_UsesUTC(t *testing.T) {
	helsinki := time.FixedZone("EET", 2*60*60)
	// 01:30 local on Jan 2 is still Jan 1 in UTC
	local := time.Date(2024, 1, 2, 1, 30, 0, 0, helsinki)

	got := StartOfDay(local)
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("StartOfDay = %v, want %v", got, want)
	}
	if DayKey(local) != "2024-01-01" {
		t.Fatalf("DayKey = %q", DayKey(local))
	}
}

func TestEndOfDay(t *testing.T) {
	got := EndOfDay(time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))
	want := time.Date(2024, 3, 5, 23, 59, 59, 999_000_000, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("EndOfDay = %v, want %v", got, want)
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-01-02")
	if err != nil || !d.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("ParseDay date: %v %v", d, err)
	}

	d, err = ParseDay("2024-01-02T23:30:00-02:00")
	if err != nil || !d.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("ParseDay timestamp: %v %v", d, err)
	}

	for _, bad := range []string{"", "02.01.2024", "2024-13-01"} {
		if _, err := ParseDay(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDay(%q): expected ErrInvalidDate, got %v", bad, err)
		}
	}
}
