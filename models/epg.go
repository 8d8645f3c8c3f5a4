package models

import (
	"strings"
	"time"
)

// isoMillis is the ISO-8601 layout used for identity keys (UTC, millisecond precision).
const isoMillis = "2006-01-02T15:04:05.000Z"

// RawProgram is a program record as delivered by a guide API before any
// timestamp parsing. Every field other than the timestamps and title is optional.
type RawProgram struct {
	ID          string   `json:"id,omitempty"`
	GuideID     string   `json:"guideid,omitempty"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Rating      string   `json:"rating,omitempty"`
	New         bool     `json:"new,omitempty"`
	Premiere    bool     `json:"premiere,omitempty"`
}

// Program is a single schedule entry with timestamps normalized to absolute instants.
type Program struct {
	ID          string    `json:"id,omitempty"`
	ChannelID   string    `json:"channelId"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Rating      string    `json:"rating,omitempty"`
	Episode     string    `json:"episode,omitempty"` // e.g. "S01E05"
	Icon        string    `json:"icon,omitempty"`
	New         bool      `json:"new,omitempty"`
	Premiere    bool      `json:"premiere,omitempty"`
}

// Key returns the identity of the program: its ID when set, otherwise the
// start instant in ISO form joined with the title.
func (p Program) Key() string {
	if id := strings.TrimSpace(p.ID); id != "" {
		return id
	}
	return p.Start.UTC().Format(isoMillis) + "-" + p.Title
}

// Duration returns End - Start. It may be zero or negative for degenerate records.
func (p Program) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// ChannelName holds the display-name variants of a channel.
type ChannelName struct {
	Clean    string `json:"clean"`
	Real     string `json:"real,omitempty"`
	Location string `json:"location,omitempty"`
}

// ChannelLogo holds light and dark theme logo URLs.
type ChannelLogo struct {
	Light string `json:"light,omitempty"`
	Dark  string `json:"dark,omitempty"`
}

// EPGChannel represents a channel's reference metadata.
type EPGChannel struct {
	ID        string      `json:"id"`
	Slug      string      `json:"slug,omitempty"`
	Name      ChannelName `json:"name"`
	Logo      ChannelLogo `json:"logo"`
	Number    string      `json:"number,omitempty"` // LCN, may be "N/A"
	GuideLink string      `json:"guideLink,omitempty"`
	Group     string      `json:"group,omitempty"`
}

// DisplayName returns the requested name variant ("clean", "real", "location"),
// falling back to the clean name.
func (c EPGChannel) DisplayName(variant string) string {
	switch variant {
	case "real":
		if c.Name.Real != "" {
			return c.Name.Real
		}
	case "location":
		if c.Name.Location != "" {
			return c.Name.Location
		}
	}
	return c.Name.Clean
}

// HasLCN reports whether the channel carries a usable logical channel number.
func (c EPGChannel) HasLCN() bool {
	n := strings.TrimSpace(c.Number)
	return n != "" && n != "N/A"
}

// EPGSchedule holds the complete EPG data for all channels.
type EPGSchedule struct {
	Channels    map[string]EPGChannel `json:"channels"` // channelId -> channel metadata
	Programs    map[string][]Program  `json:"programs"` // channelId -> programs sorted by start
	LastUpdated time.Time             `json:"lastUpdated"`
	SourceType  string                `json:"sourceType"` // "xmltv", "json" or "mixed"
}

// EPGNowPlaying represents the current and next program for a channel.
type EPGNowPlaying struct {
	ChannelID string   `json:"channelId"`
	Current   *Program `json:"current,omitempty"`
	Next      *Program `json:"next,omitempty"`
	Progress  float64  `json:"progress,omitempty"`
}

// EPGStatus represents the status of the EPG service.
type EPGStatus struct {
	Enabled        bool       `json:"enabled"`
	LastRefresh    *time.Time `json:"lastRefresh,omitempty"`
	LastError      string     `json:"lastError,omitempty"`
	ChannelCount   int        `json:"channelCount"`
	ProgramCount   int        `json:"programCount"`
	SkippedRecords int        `json:"skippedRecords"`
	Refreshing     bool       `json:"refreshing"`
	SourceCount    int        `json:"sourceCount"`
}

// GuideChannel is the channel object of a JSON guide payload.
type GuideChannel struct {
	ChannelID    string      `json:"channel_id"`
	ChannelNames ChannelName `json:"channel_names"`
	ChannelLogo  ChannelLogo `json:"channel_logo"`
	ChannelSlug  string      `json:"channel_slug"`
	ChannelNum   string      `json:"channel_number"`
	ChannelName  string      `json:"channel_name"`
	GuideLink    string      `json:"guidelink,omitempty"`
	ChannelGroup string      `json:"channel_group,omitempty"`
}

// ToChannel converts the payload channel into reference metadata.
func (g GuideChannel) ToChannel() EPGChannel {
	name := g.ChannelNames
	if name.Clean == "" {
		name.Clean = g.ChannelName
	}
	return EPGChannel{
		ID:        strings.ToLower(g.ChannelID),
		Slug:      g.ChannelSlug,
		Name:      name,
		Logo:      g.ChannelLogo,
		Number:    g.ChannelNum,
		GuideLink: g.GuideLink,
		Group:     g.ChannelGroup,
	}
}

// GuidePayload is one channel's multi-day guide as returned by a JSON guide API.
// Programs is keyed by date (YYYY-MM-DD).
type GuidePayload struct {
	Channel  GuideChannel            `json:"channel"`
	Programs map[string][]RawProgram `json:"programs"`
}

// ChannelListPayload is the channel index of a JSON guide API.
type ChannelListPayload struct {
	Data struct {
		Channels []GuideChannel `json:"channels"`
	} `json:"data"`
}
