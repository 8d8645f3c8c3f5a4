package guide

import (
	"time"

	"tvguide/models"
	"tvguide/utils/timeutil"
)

const minutesPerDay = 24 * 60

// Metrics describes the grid a layout is computed for: rows of RowMinutes,
// each RowHeight pixels tall, separated by Gap pixels, with HeaderRows and
// HeaderColumns of fixed chrome before the first program row/column.
type Metrics struct {
	RowMinutes    int     `json:"rowMinutes"`
	RowHeight     float64 `json:"rowHeight"`
	Gap           float64 `json:"gap"`
	HeaderRows    int     `json:"headerRows"`
	HeaderColumns int     `json:"headerColumns"`
}

// DefaultMetrics is a 48-row day of 60px half-hour rows with 4px gaps, one
// header row (day labels) and one header column (time labels).
func DefaultMetrics() Metrics {
	return Metrics{RowMinutes: 30, RowHeight: 60, Gap: 4, HeaderRows: 1, HeaderColumns: 1}
}

func (m Metrics) normalized() Metrics {
	d := DefaultMetrics()
	if m.RowMinutes <= 0 {
		m.RowMinutes = d.RowMinutes
	}
	if m.RowHeight <= 0 {
		m.RowHeight = d.RowHeight
	}
	if m.Gap < 0 {
		m.Gap = 0
	}
	if m.HeaderRows < 0 {
		m.HeaderRows = 0
	}
	if m.HeaderColumns < 0 {
		m.HeaderColumns = 0
	}
	return m
}

// RowsPerDay is the number of rows one day occupies.
func (m Metrics) RowsPerDay() int {
	m = m.normalized()
	return ceilDiv(minutesPerDay, m.RowMinutes)
}

// PixelsPerMinute is the vertical scale inside a row.
func (m Metrics) PixelsPerMinute() float64 {
	m = m.normalized()
	return m.RowHeight / float64(m.RowMinutes)
}

// offset is the vertical position of a minute-of-day, measured from the top
// of row 0 through every row and gap above it.
func (m Metrics) offset(minute int) float64 {
	row := minute / m.RowMinutes
	within := minute % m.RowMinutes
	return float64(row)*(m.RowHeight+m.Gap) + float64(within)*m.PixelsPerMinute()
}

// Cell is the placement of one program in the grid.
type Cell struct {
	// Visible is false when the program's day is outside the window; the
	// remaining fields are then meaningless apart from DayIndex.
	Visible  bool `json:"visible"`
	DayIndex int  `json:"dayIndex"`
	// Column is 0-based within the visible window.
	Column int `json:"column"`
	// RowStart is the 0-based row the program starts in; RowSpan is at least 1.
	RowStart int `json:"rowStart"`
	RowSpan  int `json:"rowSpan"`
	// GridRow and GridColumn are 1-based grid lines including header offsets.
	GridRow    int `json:"gridRow"`
	GridColumn int `json:"gridColumn"`
	// MarginTop shifts the block down for starts that are not row-aligned.
	MarginTop float64 `json:"marginTop"`
	// Height is the block height in pixels. HeightCorrection is the part of
	// it that differs from duration*scale + (RowSpan-1)*Gap; it is negative
	// exactly when the end is not row-aligned and Gap > 0.
	Height           float64 `json:"height"`
	HeightCorrection float64 `json:"heightCorrection"`
}

// Layout places p in the grid for the visible window over days. Day offsets
// and times of day are taken in loc. Programs whose start day lies outside
// the window, or outside days entirely, are returned with Visible false.
//
// A program running past midnight is clipped at the end of its start day.
// A program with End <= Start occupies its start row up to the next row boundary.
func (m Metrics) Layout(p models.Program, w DayWindow, days []time.Time, loc *time.Location) Cell {
	m = m.normalized()
	if len(days) == 0 {
		return Cell{}
	}

	dayIndex := timeutil.DayDiff(days[0], p.Start, loc)
	if dayIndex < 0 || dayIndex >= len(days) || !w.Contains(dayIndex) {
		return Cell{DayIndex: dayIndex}
	}

	startMin, endMin := m.minuteSpan(p, loc)

	rowStart := startMin / m.RowMinutes
	endRow := ceilDiv(endMin, m.RowMinutes)
	rowSpan := endRow - rowStart
	if rowSpan < 1 {
		rowSpan = 1
	}

	ppm := m.PixelsPerMinute()
	base := float64(endMin-startMin)*ppm + float64(rowSpan-1)*m.Gap
	height := m.offset(endMin) - m.offset(startMin) - m.Gap

	column := dayIndex - w.StartIndex
	return Cell{
		Visible:          true,
		DayIndex:         dayIndex,
		Column:           column,
		RowStart:         rowStart,
		RowSpan:          rowSpan,
		GridRow:          rowStart + m.HeaderRows + 1,
		GridColumn:       column + m.HeaderColumns + 1,
		MarginTop:        float64(startMin%m.RowMinutes) * ppm,
		Height:           height,
		HeightCorrection: height - base,
	}
}

// minuteSpan returns the start and end minute-of-day used for placement.
func (m Metrics) minuteSpan(p models.Program, loc *time.Location) (int, int) {
	startMin := timeutil.MinutesOfDay(p.Start, loc)

	var endMin int
	switch {
	case !p.End.After(p.Start):
		endMin = startMin
	case timeutil.DayDiff(p.Start, p.End, loc) > 0:
		endMin = minutesPerDay
	default:
		endMin = timeutil.MinutesOfDay(p.End, loc)
	}

	if endMin <= startMin {
		endMin = (startMin/m.RowMinutes + 1) * m.RowMinutes
		if endMin > minutesPerDay {
			endMin = minutesPerDay
		}
	}
	return startMin, endMin
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
