package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"tvguide/internal/guide"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server ServerSettings `json:"server"`
	Guide  GuideSettings  `json:"guide"`
	EPG    EPGSettings    `json:"epg"`
	Cache  CacheSettings  `json:"cache"`
	Log    LogConfig      `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// GuideSettings controls how the guide views are computed.
type GuideSettings struct {
	Timezone         string  `json:"timezone"`    // IANA name; blank or unknown means UTC
	VisibleDays      int     `json:"visibleDays"` // grid columns shown at once
	TickSeconds      int     `json:"tickSeconds"` // live status refresh interval
	RowMinutes       int     `json:"rowMinutes"`
	RowHeightPx      float64 `json:"rowHeightPx"`
	GapPx            float64 `json:"gapPx"`
	HeaderRows       int     `json:"headerRows"`
	HeaderColumns    int     `json:"headerColumns"`
	ShowTimeBlocks   bool    `json:"showTimeBlocks"`
	ShowPastPrograms bool    `json:"showPastPrograms"`
}

// Tick returns the live status refresh interval.
func (g GuideSettings) Tick() time.Duration {
	if g.TickSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(g.TickSeconds) * time.Second
}

// Metrics returns the grid geometry described by the settings.
func (g GuideSettings) Metrics() guide.Metrics {
	return guide.Metrics{
		RowMinutes:    g.RowMinutes,
		RowHeight:     g.RowHeightPx,
		Gap:           g.GapPx,
		HeaderRows:    g.HeaderRows,
		HeaderColumns: g.HeaderColumns,
	}
}

// EPGSourceType identifies how an EPG source is fetched and parsed.
type EPGSourceType string

const (
	EPGSourceXMLTV EPGSourceType = "xmltv"
	EPGSourceJSON  EPGSourceType = "json"
)

// EPGSource is one configured guide feed.
type EPGSource struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	URL      string        `json:"url"`
	Type     EPGSourceType `json:"type"`
	Enabled  bool          `json:"enabled"`
	Priority int           `json:"priority"` // lower = fetched first
}

// EPGSettings configures where guide data comes from and how long it is kept.
type EPGSettings struct {
	Enabled                bool        `json:"enabled"`
	APIBaseURL             string      `json:"apiBaseUrl"` // JSON guide API, e.g. https://host/api
	DataSource             string      `json:"dataSource"` // data source segment of the JSON API path
	XmltvURL               string      `json:"xmltvUrl"`
	Sources                []EPGSource `json:"sources"`
	RetentionDays          int         `json:"retentionDays"`
	RefreshIntervalMinutes int         `json:"refreshIntervalMinutes"`
	RetryAttempts          int         `json:"retryAttempts"`
	RequestTimeoutSeconds  int         `json:"requestTimeoutSeconds"`
}

// RequestTimeout returns the per-request HTTP timeout.
func (e EPGSettings) RequestTimeout() time.Duration {
	if e.RequestTimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(e.RequestTimeoutSeconds) * time.Second
}

type CacheSettings struct {
	Directory string `json:"directory"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 7777},
		Guide: GuideSettings{
			Timezone:         "UTC",
			VisibleDays:      7,
			TickSeconds:      60,
			RowMinutes:       30,
			RowHeightPx:      60,
			GapPx:            4,
			HeaderRows:       1,
			HeaderColumns:    1,
			ShowTimeBlocks:   true,
			ShowPastPrograms: true,
		},
		EPG: EPGSettings{
			Enabled:                false,
			Sources:                []EPGSource{},
			RetentionDays:          7,
			RefreshIntervalMinutes: 360,
			RetryAttempts:          3,
			RequestTimeoutSeconds:  120,
		},
		Cache: CacheSettings{Directory: "cache"},
		Log: LogConfig{
			File:       "cache/logs/tvguide.log",
			Level:      "info",
			MaxSize:    50,   // 50 MB per file
			MaxBackups: 3,    // keep 3 old files
			MaxAge:     7,    // 7 days
			Compress:   true, // compress old files
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	fs   afero.Fs
	path string
}

func NewManager(configPath string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), configPath)
}

// NewManagerWithFs returns a Manager backed by the given filesystem.
func NewManagerWithFs(fsys afero.Fs, configPath string) *Manager {
	return &Manager{fs: fsys, path: configPath}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := m.fs.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		// create with defaults
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := m.fs.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var raw map[string]interface{}
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		return Settings{}, err
	}

	// Older files kept guide feeds under live.epg
	if liveRaw, ok := raw["live"].(map[string]interface{}); ok {
		if epgRaw, ok := liveRaw["epg"].(map[string]interface{}); ok {
			if _, has := raw["epg"]; !has {
				raw["epg"] = epgRaw
			}
		}
		delete(raw, "live")
	}

	// Guide flags default to true, so absent keys must not decode as false
	guideRaw, _ := raw["guide"].(map[string]interface{})
	if guideRaw == nil {
		guideRaw = map[string]interface{}{}
		raw["guide"] = guideRaw
	}
	for _, key := range []string{"showTimeBlocks", "showPastPrograms"} {
		if _, has := guideRaw[key]; !has {
			guideRaw[key] = true
		}
	}

	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := json.Unmarshal(rawJSON, &s); err != nil {
		return Settings{}, err
	}

	backfill(&s)
	return s, nil
}

// backfill fills zero values for settings introduced after a file was written.
func backfill(s *Settings) {
	d := DefaultSettings()

	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = d.Server.Host
	}
	if s.Server.Port == 0 {
		s.Server.Port = d.Server.Port
	}

	if strings.TrimSpace(s.Guide.Timezone) == "" {
		s.Guide.Timezone = d.Guide.Timezone
	}
	if s.Guide.VisibleDays <= 0 {
		s.Guide.VisibleDays = d.Guide.VisibleDays
	}
	if s.Guide.TickSeconds <= 0 {
		s.Guide.TickSeconds = d.Guide.TickSeconds
	}
	if s.Guide.RowMinutes <= 0 {
		s.Guide.RowMinutes = d.Guide.RowMinutes
	}
	if s.Guide.RowHeightPx <= 0 {
		s.Guide.RowHeightPx = d.Guide.RowHeightPx
	}
	if s.Guide.GapPx < 0 {
		s.Guide.GapPx = 0
	}

	if s.EPG.Sources == nil {
		s.EPG.Sources = []EPGSource{}
	}
	for i := range s.EPG.Sources {
		if s.EPG.Sources[i].Type == "" {
			s.EPG.Sources[i].Type = EPGSourceXMLTV
		}
	}
	if s.EPG.RetentionDays <= 0 {
		s.EPG.RetentionDays = d.EPG.RetentionDays
	}
	if s.EPG.RefreshIntervalMinutes <= 0 {
		s.EPG.RefreshIntervalMinutes = d.EPG.RefreshIntervalMinutes
	}
	if s.EPG.RetryAttempts <= 0 {
		s.EPG.RetryAttempts = d.EPG.RetryAttempts
	}
	if s.EPG.RequestTimeoutSeconds <= 0 {
		s.EPG.RequestTimeoutSeconds = d.EPG.RequestTimeoutSeconds
	}

	if strings.TrimSpace(s.Cache.Directory) == "" {
		s.Cache.Directory = d.Cache.Directory
	}

	if strings.TrimSpace(s.Log.File) == "" {
		s.Log.File = d.Log.File
	}
	if strings.TrimSpace(s.Log.Level) == "" {
		s.Log.Level = d.Log.Level
	}
	if s.Log.MaxSize == 0 {
		s.Log.MaxSize = d.Log.MaxSize
	}
}

func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := m.fs.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = m.fs.Remove(tmp)
		return err
	}
	return m.fs.Rename(tmp, m.path)
}
