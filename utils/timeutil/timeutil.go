// Package timeutil parses guide timestamps into absolute instants and formats
// them for display in a viewer's location.
package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrEmpty is returned when a timestamp string is blank.
var ErrEmpty = errors.New("empty timestamp")

// Layouts carrying an explicit offset, tried first.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000-0700",
}

// Layouts without an offset; these are read as wall-clock time in the fallback location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 timestamp. Strings without an offset are
// interpreted in loc (UTC when nil). The result is always returned in UTC.
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// xmltvTimeRegex matches the XMLTV time format (YYYYMMDDHHmmss +/-HHMM).
var xmltvTimeRegex = regexp.MustCompile(`^(\d{14})(?:\s*([+-]\d{4}))?$`)

// ParseXMLTV parses an XMLTV timestamp. A missing offset means UTC.
func ParseXMLTV(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	matches := xmltvTimeRegex.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("invalid XMLTV time format: %s", s)
	}

	loc := time.UTC
	if tz := matches[2]; tz != "" {
		sign := 1
		if tz[0] == '-' {
			sign = -1
		}
		var hours, minutes int
		fmt.Sscanf(tz[1:], "%02d%02d", &hours, &minutes)
		loc = time.FixedZone(tz, sign*(hours*3600+minutes*60))
	}

	t, err := time.ParseInLocation("20060102150405", matches[1], loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// LoadLocation resolves an IANA zone name, falling back to UTC for blank or
// unknown names. The second return reports whether the name resolved.
func LoadLocation(name string) (*time.Location, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}

// Midnight truncates t to the start of its calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayDiff returns the number of calendar days from a to b in loc. It counts
// dates, not 24h periods, so DST transitions do not skew it.
func DayDiff(a, b time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// MinutesOfDay returns hour*60+minute of t in loc. Seconds are ignored.
func MinutesOfDay(t time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return lt.Hour()*60 + lt.Minute()
}

// Compare returns -1, 0 or +1 as a is before, equal to or after b.
func Compare(a, b time.Time) int {
	return a.Compare(b)
}

// FormatClock formats t as HH:MM in loc.
func FormatClock(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("15:04")
}

// FormatRange formats a start/end pair as "HH:MM - HH:MM".
func FormatRange(start, end time.Time, loc *time.Location) string {
	return FormatClock(start, loc) + " - " + FormatClock(end, loc)
}

// FormatDayLabel formats a day header such as "Mon, Jan 1".
func FormatDayLabel(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Mon, Jan 2")
}

// FormatDuration renders a duration rounded to whole minutes, e.g. "50 min".
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%d min", int(d.Round(time.Minute)/time.Minute))
}
