package utils

import (
	"errors"
	"time"
)

// All day arithmetic uses the UTC calendar day.

const DayLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date format")

// StartOfDay truncates t to midnight UTC of its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfDay is the last millisecond of t's UTC calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Millisecond)
}

// DayKey formats t's UTC calendar day as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// ParseDay accepts YYYY-MM-DD or an RFC 3339 timestamp and returns
// midnight UTC of the resulting day.
func ParseDay(s string) (time.Time, error) {
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return StartOfDay(t), nil
	}
	return time.Time{}, ErrInvalidDate
}
