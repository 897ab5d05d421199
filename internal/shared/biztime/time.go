// Package biztime centralizes time handling. All storage and transport use
// UTC; use cases take a Clock so expiry rules can be exercised in tests.
package biztime

import "time"

// CompactLayout is used in object-storage keys.
const CompactLayout = "20060102150405"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by the wall clock, always in UTC.
func SystemClock() Clock { return systemClock{} }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f().UTC() }

// NowUTC returns the current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatCompact formats t in UTC using CompactLayout.
func FormatCompact(t time.Time) string {
	return t.UTC().Format(CompactLayout)
}

// FormatRFC3339 formats t in UTC for API responses.
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatRFC3339Ptr formats an optional timestamp; nil yields nil.
func FormatRFC3339Ptr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatRFC3339(*t)
	return &s
}
