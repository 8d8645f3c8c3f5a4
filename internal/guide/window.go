package guide

// DayWindow is the contiguous slice [StartIndex, StartIndex+VisibleCount) of
// the schedule's days that is currently shown.
type DayWindow struct {
	StartIndex   int `json:"startIndex"`
	VisibleCount int `json:"visibleCount"`
}

// NewWindow returns a window of visible days starting at start, clamped to daysLength.
func NewWindow(start, visible, daysLength int) DayWindow {
	if visible < 1 {
		visible = 1
	}
	return DayWindow{StartIndex: start, VisibleCount: visible}.Clamp(daysLength)
}

// maxStart is the largest valid StartIndex for daysLength days.
func (w DayWindow) maxStart(daysLength int) int {
	if m := daysLength - w.VisibleCount; m > 0 {
		return m
	}
	return 0
}

// Clamp forces StartIndex into [0, daysLength-VisibleCount].
func (w DayWindow) Clamp(daysLength int) DayWindow {
	if hi := w.maxStart(daysLength); w.StartIndex > hi {
		w.StartIndex = hi
	}
	if w.StartIndex < 0 {
		w.StartIndex = 0
	}
	return w
}

// Next moves the window one day later, stopping at the last full window.
func (w DayWindow) Next(daysLength int) DayWindow {
	w.StartIndex = min(w.maxStart(daysLength), w.StartIndex+1)
	return w.Clamp(daysLength)
}

// Previous moves the window one day earlier, stopping at day 0.
func (w DayWindow) Previous() DayWindow {
	w.StartIndex = max(0, w.StartIndex-1)
	return w
}

// CanPrevious reports whether Previous would move the window.
func (w DayWindow) CanPrevious() bool {
	return w.StartIndex > 0
}

// CanNext reports whether Next would move the window.
func (w DayWindow) CanNext(daysLength int) bool {
	return w.StartIndex < w.maxStart(daysLength)
}

// Contains reports whether dayIndex is inside the window.
func (w DayWindow) Contains(dayIndex int) bool {
	return dayIndex >= w.StartIndex && dayIndex < w.StartIndex+w.VisibleCount
}

// End is one past the last visible index.
func (w DayWindow) End() int {
	return w.StartIndex + w.VisibleCount
}
