package guide

import (
	"time"

	"tvguide/models"
)

// UpNextWindow is how far ahead a not-yet-started program counts as "up next".
const UpNextWindow = 30 * time.Minute

// Status labels.
const (
	LabelNowPlaying = "now-playing"
	LabelEnded      = "ended"
	LabelUpcoming   = "upcoming"
)

// Status describes a program relative to a point in time.
// IsLive and HasEnded are never both true.
type Status struct {
	IsLive   bool `json:"isLive"`
	HasEnded bool `json:"hasEnded"`
	IsUpNext bool `json:"isUpNext"`
}

// Label returns "now-playing", "ended" or "upcoming".
func (s Status) Label() string {
	switch {
	case s.IsLive:
		return LabelNowPlaying
	case s.HasEnded:
		return LabelEnded
	default:
		return LabelUpcoming
	}
}

// IsLive reports whether now falls in [Start, End).
func IsLive(p models.Program, now time.Time) bool {
	return !now.Before(p.Start) && now.Before(p.End)
}

// HasEnded reports whether now is at or after End.
func HasEnded(p models.Program, now time.Time) bool {
	return !now.Before(p.End)
}

// Classify computes the status of p at now.
func Classify(p models.Program, now time.Time) Status {
	s := Status{
		IsLive:   IsLive(p, now),
		HasEnded: HasEnded(p, now),
	}
	s.IsUpNext = !s.IsLive && !s.HasEnded && p.Start.Sub(now) <= UpNextWindow
	return s
}

// Progress returns how far through p now is, as a percentage in [0, 100].
// Programs with End <= Start report 100 once started and 0 before.
func Progress(p models.Program, now time.Time) float64 {
	total := p.End.Sub(p.Start)
	if total <= 0 {
		if now.Before(p.Start) {
			return 0
		}
		return 100
	}
	pct := float64(now.Sub(p.Start)) / float64(total) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
