package logapi

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	loc := time.FixedZone("test", -4*60*60)
	now := time.Date(2024, 5, 1, 17, 0, 0, 0, loc)

	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"now", " NOW ", now},
		{"relative", "15m", now.Add(-15 * time.Minute)},
		{"relative_negative", "-2h30m", now.Add(-150 * time.Minute)},
		{"rfc3339", "2024-05-01T16:50:00Z", time.Date(2024, 5, 1, 16, 50, 0, 0, time.UTC)},
		{"local_seconds", "2024-05-01 16:50:30", time.Date(2024, 5, 1, 16, 50, 30, 0, loc)},
		{"local_minutes", "2024-05-01 16:50", time.Date(2024, 5, 1, 16, 50, 0, 0, loc)},
		{"local_t", "2024-05-01T16:50", time.Date(2024, 5, 1, 16, 50, 0, 0, loc)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTime(tc.in, now)
			if err != nil {
				t.Fatalf("ParseTime(%q): %v", tc.in, err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ParseTime(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	for _, bad := range []string{"", "  ", "yesterday", "2024-13-01"} {
		if _, err := ParseTime(bad, now); err == nil {
			t.Fatalf("ParseTime(%q) succeeded", bad)
		}
	}
}

func TestFormatTimestampIsUTC(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	got := FormatTimestamp(time.Date(2024, 5, 1, 18, 50, 0, 0, loc))
	if got != "2024-05-01T16:50:00Z" {
		t.Fatalf("FormatTimestamp = %q", got)
	}
}
