package guide

import (
	"time"

	"tvguide/models"
)

// AllProgramsBand is the single group name used when grouping is disabled.
const AllProgramsBand = "All Programs"

// Band is a named range of local start hours, [StartHour, EndHour).
type Band struct {
	Name      string `json:"name"`
	StartHour int    `json:"startHour"`
	EndHour   int    `json:"endHour"`
}

// DefaultBands partitions the day for the list view.
var DefaultBands = []Band{
	{Name: "Early Morning", StartHour: 0, EndHour: 6},
	{Name: "Morning", StartHour: 6, EndHour: 12},
	{Name: "Afternoon", StartHour: 12, EndHour: 17},
	{Name: "Evening", StartHour: 17, EndHour: 20},
	{Name: "Prime Time", StartHour: 20, EndHour: 23},
	{Name: "Late Night", StartHour: 23, EndHour: 24},
}

// Contains reports whether hour falls in the band.
func (b Band) Contains(hour int) bool {
	return hour >= b.StartHour && hour < b.EndHour
}

// Group is one named band and its programs.
type Group struct {
	Name     string           `json:"name"`
	Programs []models.Program `json:"programs"`
}

// GroupByBand splits one day's programs into bands by local start hour, in
// band order, omitting empty bands. Programs keep chronological order inside
// each band. With enabled false it returns a single "All Programs" group.
// A nil bands table means DefaultBands.
func GroupByBand(programs []models.Program, bands []Band, enabled bool, loc *time.Location) []Group {
	if loc == nil {
		loc = time.UTC
	}
	sorted := make([]models.Program, len(programs))
	copy(sorted, programs)
	SortByStart(sorted)

	if !enabled {
		return []Group{{Name: AllProgramsBand, Programs: sorted}}
	}
	if bands == nil {
		bands = DefaultBands
	}

	buckets := make([][]models.Program, len(bands))
	for _, p := range sorted {
		hour := p.Start.In(loc).Hour()
		for i, b := range bands {
			if b.Contains(hour) {
				buckets[i] = append(buckets[i], p)
				break
			}
		}
	}

	groups := make([]Group, 0, len(bands))
	for i, b := range bands {
		if len(buckets[i]) == 0 {
			continue
		}
		groups = append(groups, Group{Name: b.Name, Programs: buckets[i]})
	}
	return groups
}
