package epg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"tvguide/config"
	"tvguide/internal/guide"
	"tvguide/models"
	"tvguide/utils/timeutil"
)

const epgCacheFile = "epg.json"

var (
	// ErrDisabled is returned when guide data is requested while EPG is turned off.
	ErrDisabled = errors.New("EPG is disabled")
	// ErrChannelNotFound is returned when no source knows the requested channel.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrNoGuideData is returned when a channel is known but no source has programs for it.
	ErrNoGuideData = errors.New("no programming data available")
	// ErrRefreshInProgress is returned by Refresh while another refresh is running.
	ErrRefreshInProgress = errors.New("EPG refresh already in progress")
)

// ChannelGuide is one channel's full program list plus the data-quality
// report of the batch it came from.
type ChannelGuide struct {
	Channel  models.EPGChannel `json:"channel"`
	Programs []models.Program  `json:"programs"`
	Report   guide.Report      `json:"report"`
}

// Service handles EPG data fetching, parsing, and querying.
type Service struct {
	cfgManager *config.Manager
	fs         afero.Fs
	storageDir string
	client     *http.Client
	now        func() time.Time

	saveMu sync.Mutex // one cache write at a time; they share a temp file

	mu          sync.RWMutex
	schedule    *models.EPGSchedule
	apiChannels []models.GuideChannel
	reports     map[string]guide.Report // channelId -> report of its last load
	lastReport  guide.Report
	refreshing  bool
	lastError   string
}

// Option configures a Service.
type Option func(*Service)

// WithFs stores the cache on fsys instead of the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(s *Service) { s.fs = fsys }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

// WithClock replaces time.Now for retention and now-playing queries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new EPG service.
func NewService(storageDir string, cfgManager *config.Manager, opts ...Option) *Service {
	s := &Service{
		cfgManager: cfgManager,
		fs:         afero.NewOsFs(),
		storageDir: storageDir,
		now:        time.Now,
		schedule:   emptySchedule(time.Time{}),
		reports:    make(map[string]guide.Report),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		timeout := 120 * time.Second
		if settings, err := cfgManager.Load(); err == nil {
			timeout = settings.EPG.RequestTimeout()
		}
		s.client = &http.Client{Timeout: timeout}
	}

	if err := s.fs.MkdirAll(s.cacheDir(), 0o755); err != nil {
		log.Printf("[epg] failed to create cache directory: %v", err)
	}

	if err := s.loadFromDisk(); err != nil {
		log.Printf("[epg] no cached EPG data found or error loading: %v", err)
	} else {
		log.Printf("[epg] loaded cached EPG data: %d channels, %d programs",
			len(s.schedule.Channels), s.countPrograms())
	}

	return s
}

func emptySchedule(updated time.Time) *models.EPGSchedule {
	return &models.EPGSchedule{
		Channels:    make(map[string]models.EPGChannel),
		Programs:    make(map[string][]models.Program),
		LastUpdated: updated,
	}
}

// countPrograms returns total number of programs across all channels. Caller must hold s.mu.
func (s *Service) countPrograms() int {
	count := 0
	for _, progs := range s.schedule.Programs {
		count += len(progs)
	}
	return count
}

// GetStatus returns the current EPG service status.
func (s *Service) GetStatus() models.EPGStatus {
	settings, err := s.cfgManager.Load()
	if err != nil {
		return models.EPGStatus{Enabled: false, LastError: err.Error()}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	status := models.EPGStatus{
		Enabled:        settings.EPG.Enabled,
		ChannelCount:   len(s.schedule.Channels),
		ProgramCount:   s.countPrograms(),
		SkippedRecords: s.lastReport.Skipped,
		Refreshing:     s.refreshing,
		LastError:      s.lastError,
		SourceCount:    len(settings.EPG.Sources),
	}
	if !s.schedule.LastUpdated.IsZero() {
		updated := s.schedule.LastUpdated
		status.LastRefresh = &updated
	}
	return status
}

// Issues returns the data-quality report of the last refresh.
func (s *Service) Issues() guide.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}

// IsEnabled returns whether EPG is enabled in settings.
func (s *Service) IsEnabled() bool {
	settings, err := s.cfgManager.Load()
	if err != nil {
		return false
	}
	return settings.EPG.Enabled
}

func (s *Service) setLastError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

func (s *Service) newAPI(settings config.Settings) *guideAPI {
	if strings.TrimSpace(settings.EPG.APIBaseURL) == "" || strings.TrimSpace(settings.EPG.DataSource) == "" {
		return nil
	}
	return &guideAPI{
		f:      newFetcher(s.client, settings.EPG.RetryAttempts),
		base:   settings.EPG.APIBaseURL,
		source: settings.EPG.DataSource,
	}
}

// Refresh fetches and parses EPG data from all configured sources.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		log.Println("[epg] refresh already in progress, skipping duplicate request")
		return ErrRefreshInProgress
	}
	s.refreshing = true
	s.lastError = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	settings, err := s.cfgManager.Load()
	if err != nil {
		s.setLastError(err.Error())
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.EPG.Enabled {
		return ErrDisabled
	}

	loc, _ := timeutil.LoadLocation(settings.Guide.Timezone)
	f := newFetcher(s.client, settings.EPG.RetryAttempts)
	newSchedule := emptySchedule(s.now().UTC())
	var report guide.Report
	kinds := make(map[string]bool)

	ingest := func(name, url string) {
		log.Printf("[epg] fetching EPG from %s: %s", name, url)
		r, kind, err := s.ingestURL(ctx, f, url, newSchedule, loc)
		if err != nil {
			log.Printf("[epg] failed to fetch from %s: %v", name, err)
			s.setLastError(fmt.Sprintf("%s: %v", name, err))
			return
		}
		kinds[kind] = true
		report.Merge(r)
	}

	if settings.EPG.XmltvURL != "" {
		ingest("XMLTV URL", settings.EPG.XmltvURL)
	}

	// Sort by priority (lower = higher priority) without touching the settings slice
	sources := append([]config.EPGSource(nil), settings.EPG.Sources...)
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Priority < sources[j].Priority
	})
	for _, source := range sources {
		if !source.Enabled {
			continue
		}
		switch source.Type {
		case config.EPGSourceXMLTV, config.EPGSourceJSON:
			ingest(source.Name, source.URL)
		default:
			log.Printf("[epg] skipping unknown source type: %s", source.Type)
		}
	}

	var apiChannels []models.GuideChannel
	if api := s.newAPI(settings); api != nil {
		channels, err := api.channels(ctx)
		if err != nil {
			log.Printf("[epg] failed to fetch guide API channels: %v", err)
			s.setLastError(fmt.Sprintf("guide API: %v", err))
		} else {
			apiChannels = channels
			for _, gc := range channels {
				ch := gc.ToChannel()
				if existing, ok := newSchedule.Channels[ch.ID]; ok && existing.Number != "" && ch.Number == "" {
					ch.Number = existing.Number
				}
				newSchedule.Channels[ch.ID] = ch
			}
			kinds["json"] = true
		}
	}

	switch {
	case len(kinds) > 1:
		newSchedule.SourceType = "mixed"
	case kinds["json"]:
		newSchedule.SourceType = "json"
	case kinds["xmltv"]:
		newSchedule.SourceType = "xmltv"
	}

	pruneSchedule(newSchedule, s.now(), settings.EPG.RetentionDays)

	if !report.Clean() {
		log.Printf("[epg] data quality: %s", report)
	}

	s.mu.Lock()
	s.schedule = newSchedule
	s.apiChannels = apiChannels
	s.lastReport = report
	s.reports = make(map[string]guide.Report)
	s.mu.Unlock()

	if err := s.saveToDisk(); err != nil {
		log.Printf("[epg] failed to save EPG to disk: %v", err)
	}

	s.mu.RLock()
	log.Printf("[epg] refresh complete: %d channels, %d programs",
		len(newSchedule.Channels), s.countPrograms())
	s.mu.RUnlock()

	return nil
}

// ingestURL fetches url and merges it into schedule, dispatching on the sniffed
// format. It returns the batch report and the source kind ("xmltv" or "json").
func (s *Service) ingestURL(ctx context.Context, f *fetcher, url string, schedule *models.EPGSchedule, loc *time.Location) (guide.Report, string, error) {
	body, format, err := f.fetch(ctx, url)
	if err != nil {
		return guide.Report{}, "", err
	}
	return ingest(body, format, schedule, loc)
}

// ingest merges one decoded document into schedule.
func ingest(body []byte, format feedFormat, schedule *models.EPGSchedule, loc *time.Location) (guide.Report, string, error) {
	switch format {
	case formatXML:
		r, err := parseXMLTV(bytes.NewReader(body), schedule)
		return r, "xmltv", err
	case formatJSON:
		payloads, err := decodeGuidePayloads(body)
		if err != nil {
			return guide.Report{}, "", err
		}
		var report guide.Report
		for i := range payloads {
			ch := payloads[i].Channel.ToChannel()
			if ch.ID == "" {
				continue
			}
			programs, r := payloadPrograms(&payloads[i], ch.ID, loc)
			report.Merge(r)
			schedule.Channels[ch.ID] = ch
			schedule.Programs[ch.ID] = append(schedule.Programs[ch.ID], programs...)
			guide.SortByStart(schedule.Programs[ch.ID])
		}
		return report, "json", nil
	}
	return guide.Report{}, "", fmt.Errorf("unrecognised EPG document format")
}

// pruneSchedule drops programs that ended more than retentionDays ago or
// start more than retentionDays ahead.
func pruneSchedule(schedule *models.EPGSchedule, now time.Time, retentionDays int) {
	if retentionDays <= 0 {
		retentionDays = 7
	}
	window := time.Duration(retentionDays) * 24 * time.Hour
	cutoff := now.Add(-window)
	futureLimit := now.Add(window)

	for channelID, programs := range schedule.Programs {
		filtered := programs[:0]
		for _, prog := range programs {
			if prog.End.After(cutoff) && prog.Start.Before(futureLimit) {
				filtered = append(filtered, prog)
			}
		}
		schedule.Programs[channelID] = filtered
	}
}

// LoadChannel returns the complete program list for a channel, looked up by
// id, slug or display name. Channels known only to the JSON guide API are
// fetched on first use (trying every channel that shares the guide link) and
// kept in the schedule until the next refresh.
func (s *Service) LoadChannel(ctx context.Context, channel string) (ChannelGuide, error) {
	if cg, ok := s.cachedChannel(channel); ok {
		return cg, nil
	}

	settings, err := s.cfgManager.Load()
	if err != nil {
		return ChannelGuide{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.EPG.Enabled {
		return ChannelGuide{}, ErrDisabled
	}
	api := s.newAPI(settings)
	if api == nil {
		return ChannelGuide{}, fmt.Errorf("%w: %s", ErrChannelNotFound, channel)
	}

	s.mu.RLock()
	all := s.apiChannels
	s.mu.RUnlock()
	if len(all) == 0 {
		if all, err = api.channels(ctx); err != nil {
			return ChannelGuide{}, err
		}
		s.mu.Lock()
		s.apiChannels = all
		s.mu.Unlock()
	}

	target, ok := findGuideChannel(all, channel)
	if !ok {
		return ChannelGuide{}, fmt.Errorf("%w: %s", ErrChannelNotFound, channel)
	}

	payload, err := api.guideFromSiblings(ctx, target, all, settings.Guide.Timezone)
	if err != nil {
		return ChannelGuide{}, err
	}

	ch := target.ToChannel()
	loc, _ := timeutil.LoadLocation(settings.Guide.Timezone)
	programs, report := payloadPrograms(payload, ch.ID, loc)
	if !report.Clean() {
		log.Printf("[epg] %s data quality: %s", ch.ID, report)
	}

	s.mu.Lock()
	s.schedule.Channels[ch.ID] = ch
	s.schedule.Programs[ch.ID] = programs
	s.reports[ch.ID] = report
	s.mu.Unlock()

	if err := s.saveToDisk(); err != nil {
		log.Printf("[epg] failed to save EPG to disk: %v", err)
	}

	return ChannelGuide{Channel: ch, Programs: append([]models.Program(nil), programs...), Report: report}, nil
}

func (s *Service) cachedChannel(channel string) (ChannelGuide, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := resolveChannelID(s.schedule, channel)
	if !ok {
		return ChannelGuide{}, false
	}
	programs := s.schedule.Programs[id]
	if len(programs) == 0 {
		return ChannelGuide{}, false
	}
	ch, ok := s.schedule.Channels[id]
	if !ok {
		ch = models.EPGChannel{ID: id, Name: models.ChannelName{Clean: id}}
	}
	return ChannelGuide{
		Channel:  ch,
		Programs: append([]models.Program(nil), programs...),
		Report:   s.reports[id],
	}, true
}

// programsFor returns the stored programs for a channel key. Caller must hold s.mu.
func (s *Service) programsFor(channelID string) []models.Program {
	id, ok := resolveChannelID(s.schedule, channelID)
	if !ok {
		return nil
	}
	return s.schedule.Programs[id]
}

// GetNowPlaying returns current and next programs for the specified channel IDs.
func (s *Service) GetNowPlaying(channelIDs []string) []models.EPGNowPlaying {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().UTC()
	result := make([]models.EPGNowPlaying, 0, len(channelIDs))

	for _, channelID := range channelIDs {
		np := models.EPGNowPlaying{ChannelID: channelID}
		current, next := guide.NowNext(s.programsFor(channelID), now)
		if current != nil {
			c := *current
			np.Current = &c
			np.Progress = guide.Progress(c, now)
		}
		if next != nil {
			n := *next
			np.Next = &n
		}
		result = append(result, np)
	}

	return result
}

// GetSchedule returns programs for a channel that overlap [start, end).
func (s *Service) GetSchedule(channelID string, start, end time.Time) []models.Program {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return overlapping(s.programsFor(channelID), start, end)
}

// GetScheduleMultiple returns programs for multiple channels within a time range.
func (s *Service) GetScheduleMultiple(channelIDs []string, start, end time.Time) map[string][]models.Program {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]models.Program, len(channelIDs))
	for _, channelID := range channelIDs {
		result[channelID] = overlapping(s.programsFor(channelID), start, end)
	}
	return result
}

// GetChannelSchedule returns the programs overlapping date's calendar day in loc.
func (s *Service) GetChannelSchedule(channelID string, date time.Time, loc *time.Location) []models.Program {
	start := timeutil.Midnight(date, loc)
	return s.GetSchedule(channelID, start, start.AddDate(0, 0, 1))
}

func overlapping(programs []models.Program, start, end time.Time) []models.Program {
	var result []models.Program
	for _, prog := range programs {
		if prog.End.After(start) && prog.Start.Before(end) {
			result = append(result, prog)
		}
	}
	return result
}

// GetEPGChannelID attempts to find the EPG channel ID for a live channel.
func (s *Service) GetEPGChannelID(tvgID, channelName string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if tvgID != "" {
		lookupID := strings.ToLower(tvgID)
		if _, exists := s.schedule.Channels[lookupID]; exists {
			return lookupID
		}
	}

	if channelName != "" {
		normalizedName := normalizeChannelID(channelName)
		for _, id := range sortedKeys(s.schedule.Channels) {
			ch := s.schedule.Channels[id]
			if normalizeChannelID(id) == normalizedName || normalizeChannelID(ch.Name.Clean) == normalizedName {
				return id
			}
		}
	}

	return ""
}

// GetChannel returns one channel's metadata.
func (s *Service) GetChannel(channel string) (models.EPGChannel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := resolveChannelID(s.schedule, channel)
	if !ok {
		return models.EPGChannel{}, false
	}
	ch, ok := s.schedule.Channels[id]
	return ch, ok
}

// GetAllChannels returns all EPG channels.
func (s *Service) GetAllChannels() map[string]models.EPGChannel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]models.EPGChannel, len(s.schedule.Channels))
	for k, v := range s.schedule.Channels {
		result[k] = v
	}
	return result
}

// Channels returns every channel sorted by LCN, then by display name.
func (s *Service) Channels(nameVariant string) []models.EPGChannel {
	all := s.GetAllChannels()
	channels := make([]models.EPGChannel, 0, len(all))
	for _, ch := range all {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].ID < channels[j].ID })
	guide.SortChannels(channels, nameVariant)
	return channels
}

func (s *Service) cacheDir() string {
	return filepath.Join(s.storageDir, "epg")
}

// saveToDisk persists the EPG data to disk.
func (s *Service) saveToDisk() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	data, err := json.Marshal(s.schedule)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal EPG data: %w", err)
	}

	if err := s.fs.MkdirAll(s.cacheDir(), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	cachePath := filepath.Join(s.cacheDir(), epgCacheFile)
	tmpPath := cachePath + ".tmp"

	if err := afero.WriteFile(s.fs, tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := s.fs.Rename(tmpPath, cachePath); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// loadFromDisk loads the EPG data from disk.
func (s *Service) loadFromDisk() error {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.cacheDir(), epgCacheFile))
	if err != nil {
		return err
	}

	var schedule models.EPGSchedule
	if err := json.Unmarshal(data, &schedule); err != nil {
		return fmt.Errorf("unmarshal EPG data: %w", err)
	}
	if schedule.Channels == nil {
		schedule.Channels = make(map[string]models.EPGChannel)
	}
	if schedule.Programs == nil {
		schedule.Programs = make(map[string][]models.Program)
	}

	s.mu.Lock()
	s.schedule = &schedule
	s.mu.Unlock()

	return nil
}
