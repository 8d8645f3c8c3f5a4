package guide

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvguide/models"
)

func weekFrom(day string) []time.Time {
	start, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return Days(start, 7, time.UTC)
}

func TestLayout_UnalignedStartAndEnd(t *testing.T) {
	m := DefaultMetrics()
	days := weekFrom("2024-01-01")
	p := models.Program{
		Title: "Morning Show",
		Start: time.Date(2024, 1, 1, 7, 15, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 8, 5, 0, 0, time.UTC),
	}

	// 07:15 is 15 minutes into row 14; 08:05 rounds up to row 17.
	cell := m.Layout(p, DayWindow{StartIndex: 0, VisibleCount: 7}, days, time.UTC)
	require.True(t, cell.Visible)
	assert.Equal(t, 0, cell.DayIndex)
	assert.Equal(t, 0, cell.Column)
	assert.Equal(t, 14, cell.RowStart)
	assert.Equal(t, 3, cell.RowSpan)
	assert.Equal(t, 16, cell.GridRow)
	assert.Equal(t, 2, cell.GridColumn)
	assert.InDelta(t, 30.0, cell.MarginTop, 1e-9)
	assert.InDelta(t, -4.0, cell.HeightCorrection, 1e-9)
	assert.InDelta(t, 104.0, cell.Height, 1e-9)
}

func TestLayout_AlignedEndHasNoCorrection(t *testing.T) {
	m := DefaultMetrics()
	days := weekFrom("2024-01-01")
	p := models.Program{
		Start: time.Date(2024, 1, 1, 7, 15, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}

	cell := m.Layout(p, DayWindow{VisibleCount: 7}, days, time.UTC)
	assert.Equal(t, 2, cell.RowSpan)
	assert.InDelta(t, 0.0, cell.HeightCorrection, 1e-9)
	assert.InDelta(t, 94.0, cell.Height, 1e-9)
}

func TestLayout_AdjacentBlocksLeaveOneGap(t *testing.T) {
	m := DefaultMetrics()
	days := weekFrom("2024-01-01")
	w := DayWindow{VisibleCount: 7}

	first := models.Program{Start: time.Date(2024, 1, 1, 7, 15, 0, 0, time.UTC), End: time.Date(2024, 1, 1, 8, 5, 0, 0, time.UTC)}
	second := models.Program{Start: first.End, End: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}

	a := m.Layout(first, w, days, time.UTC)
	b := m.Layout(second, w, days, time.UTC)

	rowPitch := m.RowHeight + m.Gap
	aBottom := float64(a.RowStart)*rowPitch + a.MarginTop + a.Height
	bTop := float64(b.RowStart)*rowPitch + b.MarginTop
	assert.InDelta(t, m.Gap, bTop-aBottom, 1e-9)
}

func TestLayout_WindowVisibility(t *testing.T) {
	m := DefaultMetrics()
	days := weekFrom("2024-01-01")
	w := DayWindow{StartIndex: 2, VisibleCount: 3}

	for day := -1; day <= 8; day++ {
		start := time.Date(2024, 1, 1+day, 10, 0, 0, 0, time.UTC)
		p := models.Program{Start: start, End: start.Add(time.Hour)}
		cell := m.Layout(p, w, days, time.UTC)

		want := day >= 2 && day < 5
		assert.Equal(t, want, cell.Visible, "day %d", day)
		if want {
			assert.Equal(t, day-2, cell.Column)
		}
	}
}

func TestLayout_ZeroDurationKeepsOneRow(t *testing.T) {
	m := DefaultMetrics()
	days := weekFrom("2024-01-01")
	at := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

	cell := m.Layout(models.Program{Start: at, End: at}, DayWindow{VisibleCount: 7}, days, time.UTC)
	require.True(t, cell.Visible)
	assert.Equal(t, 1, cell.RowSpan)
	assert.Greater(t, cell.Height, 0.0)

	negative := m.Layout(models.Program{Start: at, End: at.Add(-time.Hour)}, DayWindow{VisibleCount: 7}, days, time.UTC)
	assert.Equal(t, 1, negative.RowSpan)
}

func TestLayout_ClipsAtMidnight(t *testing.T) {
	m := DefaultMetrics()
	days := weekFrom("2024-01-01")
	p := models.Program{
		Start: time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC),
	}

	cell := m.Layout(p, DayWindow{VisibleCount: 7}, days, time.UTC)
	assert.Equal(t, 47, cell.RowStart)
	assert.Equal(t, 1, cell.RowSpan)
	assert.Equal(t, 0, cell.DayIndex)
}

func TestLayout_UsesViewerLocation(t *testing.T) {
	sydney := time.FixedZone("AEDT", 11*3600)
	m := DefaultMetrics()
	days := Days(time.Date(2024, 1, 1, 0, 0, 0, 0, sydney), 7, sydney)

	// 20:00 UTC on Dec 31 is 07:00 on Jan 1 in Sydney.
	p := models.Program{
		Start: time.Date(2023, 12, 31, 20, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 12, 31, 21, 0, 0, 0, time.UTC),
	}
	cell := m.Layout(p, DayWindow{VisibleCount: 7}, days, sydney)
	require.True(t, cell.Visible)
	assert.Equal(t, 0, cell.DayIndex)
	assert.Equal(t, 14, cell.RowStart)
	assert.Equal(t, 2, cell.RowSpan)
}

func TestLayout_NoDays(t *testing.T) {
	cell := DefaultMetrics().Layout(prog("x", "07:00", "08:00"), DayWindow{VisibleCount: 7}, nil, time.UTC)
	assert.False(t, cell.Visible)
}

func TestMetrics_GapDerivedCorrection(t *testing.T) {
	m := Metrics{RowMinutes: 30, RowHeight: 90, Gap: 6}
	days := weekFrom("2024-01-01")
	p := models.Program{
		Start: time.Date(2024, 1, 1, 7, 10, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 7, 20, 0, 0, time.UTC),
	}
	cell := m.Layout(p, DayWindow{VisibleCount: 7}, days, time.UTC)
	assert.InDelta(t, -6.0, cell.HeightCorrection, 1e-9)
	assert.InDelta(t, 30.0, cell.MarginTop, 1e-9)

	noGap := Metrics{RowMinutes: 30, RowHeight: 60}
	cell = noGap.Layout(p, DayWindow{VisibleCount: 7}, days, time.UTC)
	assert.InDelta(t, 0.0, cell.HeightCorrection, 1e-9)
}
