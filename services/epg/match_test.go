package epg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tvguide/models"
)

func TestResolveChannelID(t *testing.T) {
	schedule := emptySchedule(testNow)
	schedule.Channels["nine.au"] = models.EPGChannel{ID: "nine.au", Slug: "nine", Name: models.ChannelName{Clean: "Channel Nine"}}
	schedule.Channels["sbs.au"] = models.EPGChannel{ID: "sbs.au", Slug: "sbs", Name: models.ChannelName{Clean: "SBS", Real: "SBS HD"}}
	schedule.Programs["nine.au"] = []models.Program{{Title: "News"}}
	schedule.Programs["sbs.au"] = []models.Program{{Title: "News"}}

	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"NINE.AU", "nine.au", true},
		{"sbs", "sbs.au", true},
		{"SBS HD", "sbs.au", true},
		{"us | Channel Nine", "nine.au", true},
		{"Chanel Nine", "nine.au", true},
		{"Sky News", "", false},
		{"  ", "", false},
	}
	for _, tt := range tests {
		got, ok := resolveChannelID(schedule, tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		assert.Equal(t, tt.want, got, tt.key)
	}
}

func TestResolveChannelID_NoPartialMatches(t *testing.T) {
	schedule := emptySchedule(testNow)
	for _, id := range []string{"sbs", "sbsviceland", "sbsfood"} {
		schedule.Channels[id] = models.EPGChannel{ID: id, Name: models.ChannelName{Clean: id}}
		schedule.Programs[id] = []models.Program{{Title: "News"}}
	}

	for i := 0; i < 50; i++ {
		_, ok := resolveChannelID(schedule, "sb")
		assert.False(t, ok, "a prefix of several ids must not resolve")

		_, ok = resolveChannelID(schedule, "sbs world movies")
		assert.False(t, ok, "a longer name must not resolve to a channel it merely contains")

		got, ok := resolveChannelID(schedule, "SBS Food")
		assert.True(t, ok)
		assert.Equal(t, "sbsfood", got)
	}
}

func TestResolveChannelID_AmbiguousNormalizedIsStable(t *testing.T) {
	schedule := emptySchedule(testNow)
	schedule.Programs["nine.au"] = []models.Program{{Title: "News"}}
	schedule.Programs["nine.nz"] = []models.Program{{Title: "News"}}

	for i := 0; i < 50; i++ {
		got, ok := resolveChannelID(schedule, "Nine")
		assert.True(t, ok)
		assert.Equal(t, "nine.au", got)
	}
}
