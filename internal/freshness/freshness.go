// Package freshness decides whether cached records are still usable and
// bounds which sale events count toward statistics.
package freshness

import (
	"strings"
	"time"
)

const (
	// DefaultSquadWindow gates re-fetching of a squad's stats.
	DefaultSquadWindow = 30 * time.Minute

	// LookbackWindow bounds which historical sales contribute to stats.
	LookbackWindow = 24 * time.Hour
)

// naive ISO timestamps written without a zone offset
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// IsFresh reports whether ts is younger than window at now. A nil, empty
// or unparsable timestamp is never fresh.
func IsFresh(ts *string, window time.Duration, now time.Time) bool {
	if ts == nil {
		return false
	}
	t, ok := ParseTimestamp(*ts, now.Location())
	if !ok {
		return false
	}
	return now.Sub(t) < window
}

// ParseTimestamp accepts RFC 3339 or a naive ISO timestamp interpreted in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way IsFresh expects to read it back.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// Cutoff returns the oldest sale time that still counts at now.
func Cutoff(now time.Time) time.Time {
	return now.Add(-LookbackWindow)
}
