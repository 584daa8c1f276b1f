package logapi

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the canonical encoding for search range bounds.
const TimestampLayout = time.RFC3339Nano

// TimeRange bounds a historical search. Both ends are inclusive. The client does
// not check Start <= End; the server decides what an inverted range means.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// SearchQuery configures /api/search_logs requests.
type SearchQuery struct {
	Stream string
	Range  TimeRange
	Term   string
}

// HasTerm reports whether the query carries a non-blank term filter.
func (q SearchQuery) HasTerm() bool {
	return strings.TrimSpace(q.Term) != ""
}

// FormatTimestamp encodes t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// localLayouts are accepted in the caller's time zone, most specific first.
var localLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTime reads a user supplied range bound: "now", a duration meaning that
// long before now ("15m", "2h30m"), an RFC 3339 timestamp, or a date and time
// in now's location.
func ParseTime(value string, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("time required")
	}
	if strings.EqualFold(v, "now") {
		return now, nil
	}
	if d, err := time.ParseDuration(strings.TrimPrefix(v, "-")); err == nil {
		if d < 0 {
			d = -d
		}
		return now.Add(-d), nil
	}
	if t, err := time.Parse(TimestampLayout, v); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, v, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q", v)
}
