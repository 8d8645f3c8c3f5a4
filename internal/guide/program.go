// Package guide turns program records into the derived structures an EPG view
// renders: live/upcoming/past status, filtered and deduplicated program sets,
// time-quantized grid cells and time-of-day groups.
//
// Every function in this package is pure. "now" and the viewer's location are
// always passed in explicitly.
package guide

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tvguide/models"
	"tvguide/utils/timeutil"
)

// Issue describes one record that was dropped during normalization.
type Issue struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
	Field string `json:"field"`
	Value string `json:"value"`
	Err   string `json:"error"`
}

// Report is the data-quality summary of a normalization batch.
type Report struct {
	Total   int     `json:"total"`
	Skipped int     `json:"skipped"`
	Issues  []Issue `json:"issues,omitempty"`
}

// Clean reports whether every record survived.
func (r Report) Clean() bool {
	return r.Skipped == 0
}

// Merge folds other into r.
func (r *Report) Merge(other Report) {
	offset := r.Total
	r.Total += other.Total
	r.Skipped += other.Skipped
	for _, is := range other.Issues {
		is.Index += offset
		r.Issues = append(r.Issues, is)
	}
}

func (r Report) String() string {
	if r.Clean() {
		return fmt.Sprintf("%d records, none skipped", r.Total)
	}
	return fmt.Sprintf("%d records, %d skipped (first: %s %q: %s)",
		r.Total, r.Skipped, r.Issues[0].Field, r.Issues[0].Value, r.Issues[0].Err)
}

// Normalize parses raw records into programs. Records whose start or end
// cannot be parsed are skipped and described in the report; the batch itself
// never fails. Timestamps without an offset are read in loc.
func Normalize(channelID string, raws []models.RawProgram, loc *time.Location) ([]models.Program, Report) {
	report := Report{Total: len(raws)}
	programs := make([]models.Program, 0, len(raws))

	for i, raw := range raws {
		start, err := timeutil.ParseInstant(raw.StartTime, loc)
		if err != nil {
			report.Skipped++
			report.Issues = append(report.Issues, Issue{Index: i, Title: raw.Title, Field: "start_time", Value: raw.StartTime, Err: err.Error()})
			continue
		}
		end, err := timeutil.ParseInstant(raw.EndTime, loc)
		if err != nil {
			report.Skipped++
			report.Issues = append(report.Issues, Issue{Index: i, Title: raw.Title, Field: "end_time", Value: raw.EndTime, Err: err.Error()})
			continue
		}

		id := strings.TrimSpace(raw.ID)
		if id == "" {
			id = strings.TrimSpace(raw.GuideID)
		}

		programs = append(programs, models.Program{
			ID:          id,
			ChannelID:   channelID,
			Title:       raw.Title,
			Subtitle:    raw.Subtitle,
			Description: raw.Description,
			Categories:  compactCategories(raw.Categories),
			Start:       start,
			End:         end,
			Rating:      raw.Rating,
			New:         raw.New,
			Premiere:    raw.Premiere,
		})
	}

	return programs, report
}

// compactCategories drops blank entries; nil and empty both mean "no categories".
func compactCategories(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, c := range in {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortByStart orders programs chronologically in place, keeping input order for equal starts.
func SortByStart(programs []models.Program) {
	sort.SliceStable(programs, func(i, j int) bool {
		return programs[i].Start.Before(programs[j].Start)
	})
}
