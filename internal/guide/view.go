package guide

import (
	"time"

	"tvguide/models"
	"tvguide/utils/textmatch"
	"tvguide/utils/timeutil"
)

// Entry is a program together with everything derived from it at one instant.
type Entry struct {
	Key         string         `json:"key"`
	Program     models.Program `json:"program"`
	Title       string         `json:"title"`
	Status      Status         `json:"status"`
	Label       string         `json:"label"`
	Progress    float64        `json:"progress,omitempty"` // set for live programs only
	Indicators  Indicators     `json:"indicators"`
	Placeholder bool           `json:"placeholder,omitempty"`
	Kind        string         `json:"kind,omitempty"`
	TimeRange   string         `json:"timeRange"`
	Duration    string         `json:"duration"`
}

// NewEntry derives an Entry for p at now; times are formatted in loc.
func NewEntry(p models.Program, now time.Time, loc *time.Location) Entry {
	st := Classify(p, now)
	e := Entry{
		Key:         p.Key(),
		Program:     p,
		Title:       textmatch.Decode(p.Title),
		Status:      st,
		Label:       st.Label(),
		Indicators:  ProgramIndicators(p),
		Placeholder: IsPlaceholder(p.Title),
		Kind:        CategoryKind(p.Categories),
		TimeRange:   timeutil.FormatRange(p.Start, p.End, loc),
		Duration:    timeutil.FormatDuration(p.Duration()),
	}
	if st.IsLive {
		e.Progress = Progress(p, now)
	}
	return e
}

// DayHeader labels one column of the grid or one tab of the list view.
type DayHeader struct {
	Index int       `json:"index"`
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Today bool      `json:"today"`
}

func dayHeaders(days []time.Time, from, to int, now time.Time, loc *time.Location) []DayHeader {
	if from < 0 {
		from = 0
	}
	if to > len(days) {
		to = len(days)
	}
	headers := make([]DayHeader, 0, max(0, to-from))
	for i := from; i < to; i++ {
		headers = append(headers, DayHeader{
			Index: i,
			Date:  days[i],
			Label: timeutil.FormatDayLabel(days[i], loc),
			Today: timeutil.DayDiff(days[i], now, loc) == 0,
		})
	}
	return headers
}

// ViewOptions carries the viewer's choices shared by grid and list views.
type ViewOptions struct {
	Criteria   Criteria
	Window     DayWindow
	Metrics    Metrics
	Location   *time.Location
	TimeBlocks bool
	Bands      []Band
}

func (o ViewOptions) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// GridEntry is an Entry placed in the grid.
type GridEntry struct {
	Entry
	Cell Cell `json:"cell"`
}

// GridView is everything a grid renderer needs for one pass.
type GridView struct {
	Days        []DayHeader `json:"days"`
	Window      DayWindow   `json:"window"`
	DaysLength  int         `json:"daysLength"`
	RowsPerDay  int         `json:"rowsPerDay"`
	Entries     []GridEntry `json:"entries"`
	Hidden      int         `json:"hidden"`
	Now         Slot        `json:"now"`
	CanPrevious bool        `json:"canPrevious"`
	CanNext     bool        `json:"canNext"`
}

// BuildGrid runs dedupe, filter and layout over programs for the visible window.
// Programs outside the window are counted in Hidden and not returned.
func BuildGrid(programs []models.Program, days []time.Time, opts ViewOptions, now time.Time) GridView {
	loc := opts.location()
	w := opts.Window.Clamp(len(days))
	crit := opts.Criteria
	crit.Now = now

	view := GridView{
		Days:        dayHeaders(days, w.StartIndex, w.End(), now, loc),
		Window:      w,
		DaysLength:  len(days),
		RowsPerDay:  opts.Metrics.RowsPerDay(),
		Now:         opts.Metrics.CurrentSlot(now, w, days, loc),
		CanPrevious: w.CanPrevious(),
		CanNext:     w.CanNext(len(days)),
	}

	for _, p := range Filter(Dedupe(programs), crit) {
		cell := opts.Metrics.Layout(p, w, days, loc)
		if !cell.Visible {
			view.Hidden++
			continue
		}
		view.Entries = append(view.Entries, GridEntry{Entry: NewEntry(p, now, loc), Cell: cell})
	}
	return view
}

// ListGroup is a named band of entries.
type ListGroup struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// ListView is everything a list renderer needs for one selected day.
type ListView struct {
	Day        *DayHeader  `json:"day,omitempty"`
	Days       []DayHeader `json:"days"`
	TimeBlocks bool        `json:"timeBlocks"`
	Groups     []ListGroup `json:"groups"`
	Count      int         `json:"count"`
	Categories []string    `json:"categories"`
}

// BuildList runs dedupe, the selected-day partition, filter and band grouping.
// An out-of-range dayIndex yields a view with no groups.
func BuildList(programs []models.Program, days []time.Time, dayIndex int, opts ViewOptions, now time.Time) ListView {
	loc := opts.location()
	crit := opts.Criteria
	crit.Now = now

	unique := Dedupe(programs)
	view := ListView{
		Days:       dayHeaders(days, 0, len(days), now, loc),
		TimeBlocks: opts.TimeBlocks,
		Groups:     []ListGroup{},
		Categories: UniqueCategories(unique),
	}
	if dayIndex < 0 || dayIndex >= len(days) {
		return view
	}
	view.Day = &view.Days[dayIndex]

	selected := Filter(ProgramsOnDay(unique, days[dayIndex], loc), crit)
	for _, g := range GroupByBand(selected, opts.Bands, opts.TimeBlocks, loc) {
		lg := ListGroup{Name: g.Name, Entries: make([]Entry, 0, len(g.Programs))}
		for _, p := range g.Programs {
			lg.Entries = append(lg.Entries, NewEntry(p, now, loc))
		}
		view.Count += len(lg.Entries)
		view.Groups = append(view.Groups, lg)
	}
	return view
}

// NowNext returns the live program and the one after it (or, when nothing is
// live, the first upcoming program as next). programs must be sorted by start.
func NowNext(programs []models.Program, now time.Time) (current, next *models.Program) {
	for i := range programs {
		p := &programs[i]
		if IsLive(*p, now) {
			current = p
			if i+1 < len(programs) {
				next = &programs[i+1]
			}
			return current, next
		}
		if p.Start.After(now) {
			return nil, p
		}
	}
	return nil, nil
}
