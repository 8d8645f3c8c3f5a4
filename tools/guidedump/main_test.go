package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tvguide/internal/guide"
	"tvguide/models"
	"tvguide/services/epg"
)

func TestPickChannel(t *testing.T) {
	guides := []epg.ChannelGuide{
		{Channel: models.EPGChannel{ID: "abc1", Slug: "abc"}},
		{Channel: models.EPGChannel{ID: "sbs1", Slug: "sbs"}},
	}

	got, ok := pickChannel(guides, "")
	assert.True(t, ok)
	assert.Equal(t, "abc1", got.Channel.ID)

	got, ok = pickChannel(guides, "SBS")
	assert.True(t, ok)
	assert.Equal(t, "sbs1", got.Channel.ID)

	_, ok = pickChannel(guides, "nine")
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	start := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	programs := []models.Program{
		{Title: "Breakfast", Start: start, End: start.Add(time.Hour)},
		{Title: "Movie", Categories: []string{"Premiere"}, Start: start.Add(13 * time.Hour), End: start.Add(15 * time.Hour)},
	}
	days := guide.Days(start, 1, time.UTC)
	view := guide.BuildList(programs, days, 0, guide.ViewOptions{TimeBlocks: true, Criteria: guide.Criteria{ShowPast: true}}, start.Add(30*time.Minute))

	out := render("ABC", view)
	assert.Contains(t, out, "ABC")
	assert.Contains(t, out, "Morning")
	assert.Contains(t, out, "Prime Time")
	assert.Contains(t, out, "LIVE")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "PREMIERE")
	assert.Contains(t, out, "2 programs")
	assert.Less(t, strings.Index(out, "Breakfast"), strings.Index(out, "Movie"))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, 10, strings.Count(progressBar(50, 20), "█"))
	assert.Equal(t, 20, strings.Count(progressBar(150, 20), "█"))
	assert.Equal(t, 0, strings.Count(progressBar(-5, 20), "█"))
}
