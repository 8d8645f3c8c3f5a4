// Package session keeps one guide view per viewer: the channel being shown,
// the visible day window, the selected list day and the filter criteria.
// Each session re-evaluates live status on its own ticker and pushes the
// result to subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"tvguide/config"
	"tvguide/internal/guide"
	"tvguide/models"
	"tvguide/services/epg"
	"tvguide/services/scheduler"
	"tvguide/utils/timeutil"
)

// ErrNotFound is returned for unknown or closed session ids.
var ErrNotFound = errors.New("session not found")

// Loader provides a channel's complete program list.
type Loader interface {
	LoadChannel(ctx context.Context, channel string) (epg.ChannelGuide, error)
}

// Options are the viewer's choices when a session is created.
type Options struct {
	Channel     string         `json:"channel"`
	Timezone    string         `json:"timezone"`
	VisibleDays int            `json:"visibleDays"`
	Criteria    guide.Criteria `json:"criteria"`
	TimeBlocks  *bool          `json:"timeBlocks,omitempty"`
}

// Snapshot is the externally visible state of a session.
type Snapshot struct {
	ID          string            `json:"id"`
	Channel     models.EPGChannel `json:"channel"`
	Timezone    string            `json:"timezone"`
	Window      guide.DayWindow   `json:"window"`
	DaysLength  int               `json:"daysLength"`
	SelectedDay int               `json:"selectedDay"`
	Criteria    guide.Criteria    `json:"criteria"`
	TimeBlocks  bool              `json:"timeBlocks"`
	Categories  []string          `json:"categories"`
	Report      guide.Report      `json:"report"`
	CanPrevious bool              `json:"canPrevious"`
	CanNext     bool              `json:"canNext"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Update is pushed to subscribers on every tick.
type Update struct {
	SessionID string       `json:"sessionId"`
	Channel   string       `json:"channel"`
	Now       time.Time    `json:"now"`
	Current   *guide.Entry `json:"current,omitempty"`
	Next      *guide.Entry `json:"next,omitempty"`
	Slot      guide.Slot   `json:"slot"`
}

// Session is one viewer's guide view. Programs are an immutable snapshot
// replaced wholesale when the channel changes.
type Session struct {
	id        string
	createdAt time.Time

	mu          sync.RWMutex
	channel     models.EPGChannel
	programs    []models.Program
	report      guide.Report
	categories  []string
	tzName      string
	loc         *time.Location
	days        []time.Time
	window      guide.DayWindow
	selectedDay int
	criteria    guide.Criteria
	timeBlocks  bool
	closed      bool

	subMu  sync.Mutex
	subs   map[uuid.UUID]chan Update
	latest epg.Latest
	ticker scheduler.Ticker
}

// Service owns every open session.
type Service struct {
	cfgManager *config.Manager
	loader     Loader
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a session service backed by loader.
func NewService(cfgManager *config.Manager, loader Loader, opts ...Option) *Service {
	s := &Service{
		cfgManager: cfgManager,
		loader:     loader,
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) settings() config.Settings {
	settings, err := s.cfgManager.Load()
	if err != nil {
		log.Printf("[session] failed to load settings, using defaults: %v", err)
		return config.DefaultSettings()
	}
	return settings
}

// Metrics returns the grid metrics from settings.
func (s *Service) Metrics() guide.Metrics {
	return s.settings().Guide.Metrics()
}

// Create loads the requested channel and opens a session on it.
func (s *Service) Create(ctx context.Context, opts Options) (Snapshot, error) {
	settings := s.settings()

	tzName := opts.Timezone
	if tzName == "" {
		tzName = settings.Guide.Timezone
	}
	loc, ok := timeutil.LoadLocation(tzName)
	if !ok {
		tzName = "UTC"
	}
	visible := opts.VisibleDays
	if visible <= 0 {
		visible = settings.Guide.VisibleDays
	}
	timeBlocks := settings.Guide.ShowTimeBlocks
	if opts.TimeBlocks != nil {
		timeBlocks = *opts.TimeBlocks
	}

	sess := &Session{
		id:         uuid.NewString(),
		createdAt:  s.now().UTC(),
		tzName:     tzName,
		loc:        loc,
		window:     guide.DayWindow{VisibleCount: max(1, visible)},
		criteria:   opts.Criteria,
		timeBlocks: timeBlocks,
		subs:       make(map[uuid.UUID]chan Update),
	}
	sess.criteria.Now = time.Time{}

	if err := s.load(ctx, sess, opts.Channel, false); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.startTicker(sess, settings.Guide.Tick())
	log.Printf("[session] opened %s on %s (%s)", sess.id, sess.channel.ID, tzName)
	return sess.snapshot(), nil
}

// load fetches channel and swaps it into sess. A load started later for the
// same session wins; an earlier one still in flight returns epg.ErrSuperseded.
// The swap, and the ticker restart when restart is set, happen before any
// newer load can begin.
func (s *Service) load(ctx context.Context, sess *Session, channel string, restart bool) error {
	return epg.Commit(&sess.latest, ctx, func(ctx context.Context) (epg.ChannelGuide, error) {
		return s.loader.LoadChannel(ctx, channel)
	}, func(cg epg.ChannelGuide) error {
		programs := guide.Dedupe(cg.Programs)
		guide.SortByStart(programs)
		now := s.now()

		sess.mu.Lock()
		if sess.closed {
			sess.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrNotFound, sess.id)
		}
		sess.channel = cg.Channel
		sess.programs = programs
		sess.report = cg.Report
		sess.categories = guide.UniqueCategories(programs)
		sess.days = guide.SpanDays(programs, sess.loc)
		if len(sess.days) == 0 {
			sess.days = guide.Days(now, 1, sess.loc)
		}

		// Open on today when the schedule covers it.
		today := timeutil.DayDiff(sess.days[0], now, sess.loc)
		sess.window = guide.NewWindow(today, sess.window.VisibleCount, len(sess.days))
		sess.selectedDay = min(max(today, 0), len(sess.days)-1)
		sess.mu.Unlock()

		if restart {
			s.startTicker(sess, s.settings().Guide.Tick())
		}
		return nil
	})
}

func (s *Service) startTicker(sess *Session, interval time.Duration) {
	sess.ticker.Reset(interval, func(ctx context.Context) {
		sess.broadcast(sess.update(s.now(), s.Metrics()))
	})
}

func (s *Service) lookup(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// Get returns a session's state.
func (s *Service) Get(id string) (Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return sess.snapshot(), nil
}

// SetChannel switches the session to another channel. The status ticker is
// restarted so updates never mix channels.
func (s *Service) SetChannel(ctx context.Context, id, channel string) (Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.load(ctx, sess, channel, true); err != nil {
		return Snapshot{}, err
	}
	log.Printf("[session] %s switched to %s", id, sess.snapshot().Channel.ID)
	return sess.snapshot(), nil
}

// Next moves the day window one day later.
func (s *Service) Next(id string) (Snapshot, error) {
	return s.mutate(id, func(sess *Session) {
		sess.window = sess.window.Next(len(sess.days))
	})
}

// Previous moves the day window one day earlier.
func (s *Service) Previous(id string) (Snapshot, error) {
	return s.mutate(id, func(sess *Session) {
		sess.window = sess.window.Previous()
	})
}

// SelectDay chooses the list view's day. Out-of-range indices are clamped.
func (s *Service) SelectDay(id string, dayIndex int) (Snapshot, error) {
	return s.mutate(id, func(sess *Session) {
		sess.selectedDay = min(max(dayIndex, 0), len(sess.days)-1)
	})
}

// SetCriteria replaces the filter criteria.
func (s *Service) SetCriteria(id string, criteria guide.Criteria) (Snapshot, error) {
	criteria.Now = time.Time{}
	return s.mutate(id, func(sess *Session) {
		sess.criteria = criteria
	})
}

// SetTimeBlocks toggles list grouping by time of day.
func (s *Service) SetTimeBlocks(id string, enabled bool) (Snapshot, error) {
	return s.mutate(id, func(sess *Session) {
		sess.timeBlocks = enabled
	})
}

// ViewUpdate changes a session's filters in one step. Nil fields keep their
// current value.
type ViewUpdate struct {
	Category   string `json:"category"`
	Search     string `json:"search"`
	ShowPast   *bool  `json:"showPast,omitempty"`
	TimeBlocks *bool  `json:"timeBlocks,omitempty"`
}

// UpdateView replaces the category and search filters and, when set, the
// past-program and time-block toggles, atomically.
func (s *Service) UpdateView(id string, u ViewUpdate) (Snapshot, error) {
	return s.mutate(id, func(sess *Session) {
		showPast := sess.criteria.ShowPast
		if u.ShowPast != nil {
			showPast = *u.ShowPast
		}
		sess.criteria = guide.Criteria{Category: u.Category, Search: u.Search, ShowPast: showPast}
		if u.TimeBlocks != nil {
			sess.timeBlocks = *u.TimeBlocks
		}
	})
}

// mutate applies fn and returns the state it produced.
func (s *Service) mutate(id string, fn func(*Session)) (Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess)
	return sess.snapshotLocked(), nil
}

// Grid computes the grid view for the session's window at the current time.
func (s *Service) Grid(id string) (guide.GridView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return guide.GridView{}, err
	}
	metrics := s.Metrics()
	now := s.now()

	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return guide.BuildGrid(sess.programs, sess.days, sess.viewOptions(metrics), now), nil
}

// List computes the list view for the session's selected day.
func (s *Service) List(id string) (guide.ListView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return guide.ListView{}, err
	}
	metrics := s.Metrics()
	now := s.now()

	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return guide.BuildList(sess.programs, sess.days, sess.selectedDay, sess.viewOptions(metrics), now), nil
}

// Status computes the session's live status now, without waiting for a tick.
func (s *Service) Status(id string) (Update, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Update{}, err
	}
	return sess.update(s.now(), s.Metrics()), nil
}

// Subscribe returns a channel of status updates and a function that ends the
// subscription. Slow subscribers only ever see the latest update.
func (s *Service) Subscribe(id string) (<-chan Update, func(), error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}

	key := uuid.New()
	ch := make(chan Update, 1)
	initial := sess.update(s.now(), s.Metrics())

	sess.subMu.Lock()
	if sess.subs == nil {
		sess.subMu.Unlock()
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sess.subs[key] = ch
	// Deliver the current state straight away.
	sess.send(ch, initial)
	sess.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			sess.subMu.Lock()
			if c, ok := sess.subs[key]; ok {
				delete(sess.subs, key)
				close(c)
			}
			sess.subMu.Unlock()
		})
	}
	return ch, cancel, nil
}

// Close stops a session's ticker, cancels any load in flight and ends its subscriptions.
func (s *Service) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sess.close()
	log.Printf("[session] closed %s", id)
	return nil
}

// CloseAll closes every session.
func (s *Service) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
}

// Count returns the number of open sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (sess *Session) close() {
	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()

	// Stop loads first: a commit in progress may still restart the ticker.
	sess.latest.Stop()
	sess.ticker.Stop()

	sess.subMu.Lock()
	for key, ch := range sess.subs {
		delete(sess.subs, key)
		close(ch)
	}
	sess.subs = nil
	sess.subMu.Unlock()
}

func (sess *Session) viewOptions(metrics guide.Metrics) guide.ViewOptions {
	return guide.ViewOptions{
		Criteria:   sess.criteria,
		Window:     sess.window,
		Metrics:    metrics,
		Location:   sess.loc,
		TimeBlocks: sess.timeBlocks,
	}
}

func (sess *Session) snapshot() Snapshot {
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return sess.snapshotLocked()
}

func (sess *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:          sess.id,
		Channel:     sess.channel,
		Timezone:    sess.tzName,
		Window:      sess.window,
		DaysLength:  len(sess.days),
		SelectedDay: sess.selectedDay,
		Criteria:    sess.criteria,
		TimeBlocks:  sess.timeBlocks,
		Categories:  sess.categories,
		Report:      sess.report,
		CanPrevious: sess.window.CanPrevious(),
		CanNext:     sess.window.CanNext(len(sess.days)),
		CreatedAt:   sess.createdAt,
	}
}

func (sess *Session) update(now time.Time, metrics guide.Metrics) Update {
	sess.mu.RLock()
	defer sess.mu.RUnlock()

	u := Update{
		SessionID: sess.id,
		Channel:   sess.channel.ID,
		Now:       now.UTC(),
		Slot:      metrics.CurrentSlot(now, sess.window, sess.days, sess.loc),
	}
	current, next := guide.NowNext(sess.programs, now)
	if current != nil {
		e := guide.NewEntry(*current, now, sess.loc)
		u.Current = &e
	}
	if next != nil {
		e := guide.NewEntry(*next, now, sess.loc)
		u.Next = &e
	}
	return u
}

func (sess *Session) broadcast(u Update) {
	sess.subMu.Lock()
	defer sess.subMu.Unlock()
	for _, ch := range sess.subs {
		sess.send(ch, u)
	}
}

// send replaces any undelivered update with u. Caller must hold subMu.
func (sess *Session) send(ch chan Update, u Update) {
	for {
		select {
		case ch <- u:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
