package guide

import (
	"time"

	"tvguide/models"
	"tvguide/utils/timeutil"
)

// Days returns n consecutive calendar days starting at start's date in loc.
// Each entry is local midnight; days are stepped by date so DST changes do
// not drift them.
func Days(start time.Time, n int, loc *time.Location) []time.Time {
	if n <= 0 {
		return nil
	}
	first := timeutil.Midnight(start, loc)
	days := make([]time.Time, n)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}

// SpanDays returns the days covered by programs, from the earliest start's
// date to the latest start's date inclusive.
func SpanDays(programs []models.Program, loc *time.Location) []time.Time {
	if len(programs) == 0 {
		return nil
	}
	first, last := programs[0].Start, programs[0].Start
	for _, p := range programs[1:] {
		if p.Start.Before(first) {
			first = p.Start
		}
		if p.Start.After(last) {
			last = p.Start
		}
	}
	return Days(first, timeutil.DayDiff(first, last, loc)+1, loc)
}

// ProgramsOnDay returns the programs starting on day's local date, sorted by start.
func ProgramsOnDay(programs []models.Program, day time.Time, loc *time.Location) []models.Program {
	var out []models.Program
	for _, p := range programs {
		if timeutil.DayDiff(day, p.Start, loc) == 0 {
			out = append(out, p)
		}
	}
	SortByStart(out)
	return out
}

// Slot locates now in the grid for the current-time indicator.
type Slot struct {
	Visible bool `json:"visible"`
	Column  int  `json:"column"`
	Row     int  `json:"row"`
	// Fraction is how far through the row now is, in [0, 1).
	Fraction float64 `json:"fraction"`
	// Offset is the pixel position of now from the top of row 0.
	Offset float64 `json:"offset"`
}

// CurrentSlot returns the row and column containing now, or a non-visible
// slot when now's day is not in the window.
func (m Metrics) CurrentSlot(now time.Time, w DayWindow, days []time.Time, loc *time.Location) Slot {
	m = m.normalized()
	if len(days) == 0 {
		return Slot{}
	}
	if loc == nil {
		loc = time.UTC
	}
	dayIndex := timeutil.DayDiff(days[0], now, loc)
	if dayIndex < 0 || dayIndex >= len(days) || !w.Contains(dayIndex) {
		return Slot{}
	}

	local := now.In(loc)
	minute := local.Hour()*60 + local.Minute()
	within := float64(minute%m.RowMinutes) + float64(local.Second())/60
	return Slot{
		Visible:  true,
		Column:   dayIndex - w.StartIndex,
		Row:      minute / m.RowMinutes,
		Fraction: within / float64(m.RowMinutes),
		Offset:   float64(minute/m.RowMinutes)*(m.RowHeight+m.Gap) + within*m.PixelsPerMinute(),
	}
}
