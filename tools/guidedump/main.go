// Command guidedump prints one day of a saved guide file as the list view
// would show it: time-of-day groups, status badges and live progress.
//
//	guidedump -file abc.json -tz Australia/Sydney -at 2024-01-01T07:30:00+11:00
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"

	"tvguide/internal/guide"
	"tvguide/services/epg"
	"tvguide/utils/timeutil"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	tabStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Padding(0, 1)
	activeTab     = lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1)
	bandStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")).MarginTop(1)
	timeStyle     = lipgloss.NewStyle().Width(15).Foreground(lipgloss.Color("#AAAAAA"))
	endedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	liveBadge     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#E0245E")).Padding(0, 1)
	nextBadge     = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#FFD166")).Padding(0, 1)
	newBadge      = lipgloss.NewStyle().Foreground(lipgloss.Color("#2D9CDB"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0245E"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func main() {
	var (
		file     = flag.String("file", "", "saved XMLTV document or JSON guide payload (may be gzipped)")
		channel  = flag.String("channel", "", "channel id or slug; defaults to the first channel")
		tz       = flag.String("tz", "UTC", "IANA timezone for days and times")
		at       = flag.String("at", "", "RFC 3339 instant to use as now")
		day      = flag.Int("day", -1, "day index to show; defaults to today")
		category = flag.String("category", "", "only show programs in this category")
		search   = flag.String("search", "", "only show programs matching this text")
		past     = flag.Bool("past", true, "include programs that have ended")
		blocks   = flag.Bool("blocks", true, "group by time of day")
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	loc, ok := timeutil.LoadLocation(*tz)
	if !ok {
		log.Printf("unknown timezone %q, using UTC", *tz)
	}
	now := time.Now()
	if *at != "" {
		parsed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			log.Fatalf("invalid -at: %v", err)
		}
		now = parsed
	}

	guides, report, err := epg.ReadFile(afero.NewOsFs(), *file, loc)
	if err != nil {
		log.Fatalf("load guide: %v", err)
	}
	if len(guides) == 0 {
		log.Fatalf("%s contains no channels", *file)
	}
	if !report.Clean() {
		log.Printf("data quality: %s", report)
	}

	cg, ok := pickChannel(guides, *channel)
	if !ok {
		log.Fatalf("channel %q not found in %s", *channel, *file)
	}

	days := guide.SpanDays(cg.Programs, loc)
	if len(days) == 0 {
		days = guide.Days(now, 1, loc)
	}
	dayIndex := *day
	if dayIndex < 0 {
		dayIndex = min(max(timeutil.DayDiff(days[0], now, loc), 0), len(days)-1)
	}

	view := guide.BuildList(cg.Programs, days, dayIndex, guide.ViewOptions{
		Criteria:   guide.Criteria{Category: *category, Search: *search, ShowPast: *past},
		Location:   loc,
		TimeBlocks: *blocks,
	}, now)

	fmt.Println(render(cg.Channel.DisplayName("clean"), view))
}

func pickChannel(guides []epg.ChannelGuide, key string) (epg.ChannelGuide, bool) {
	if key == "" {
		return guides[0], true
	}
	for _, g := range guides {
		if strings.EqualFold(g.Channel.ID, key) || strings.EqualFold(g.Channel.Slug, key) {
			return g, true
		}
	}
	return epg.ChannelGuide{}, false
}

func render(channelName string, view guide.ListView) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(channelName))
	b.WriteString("\n")

	tabs := make([]string, 0, len(view.Days))
	for _, d := range view.Days {
		style := tabStyle
		if view.Day != nil && d.Index == view.Day.Index {
			style = activeTab
		}
		label := d.Label
		if d.Today {
			label += " (today)"
		}
		tabs = append(tabs, style.Render(label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	if view.Count == 0 {
		b.WriteString(mutedStyle.Render("\nNo programs match."))
		return b.String()
	}

	for _, g := range view.Groups {
		if view.TimeBlocks {
			b.WriteString(bandStyle.Render(g.Name))
			b.WriteString("\n")
		}
		for _, e := range g.Entries {
			b.WriteString(renderEntry(e))
			b.WriteString("\n")
		}
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("\n%d programs", view.Count)))
	return b.String()
}

func renderEntry(e guide.Entry) string {
	title := e.Title
	if e.Program.Subtitle != "" {
		title += mutedStyle.Render(" · " + e.Program.Subtitle)
	}
	if e.Status.HasEnded {
		title = endedStyle.Render(e.Title)
	}

	parts := []string{timeStyle.Render(e.TimeRange), title}
	switch {
	case e.Status.IsLive:
		parts = append(parts, liveBadge.Render("LIVE"), progressBar(e.Progress, 20))
	case e.Status.IsUpNext:
		parts = append(parts, nextBadge.Render("NEXT"))
	}
	if e.Indicators.Premiere {
		parts = append(parts, newBadge.Render("PREMIERE"))
	} else if e.Indicators.New {
		parts = append(parts, newBadge.Render("NEW"))
	}
	if !e.Status.HasEnded {
		parts = append(parts, mutedStyle.Render(e.Duration))
	}
	return strings.Join(parts, " ")
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = min(max(filled, 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return progressStyle.Render(bar) + fmt.Sprintf(" %d%%", int(percent))
}
