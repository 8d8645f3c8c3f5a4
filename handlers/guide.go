package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"tvguide/config"
	"tvguide/internal/guide"
	"tvguide/models"
	"tvguide/services/epg"
	"tvguide/services/session"
	"tvguide/utils/timeutil"
)

//go:generate mockgen -destination=mocks/mock_guide.go -package=mocks tvguide/handlers ProgramSource,SessionManager

// ProgramSource supplies channels and their complete program lists.
type ProgramSource interface {
	Channels(nameVariant string) []models.EPGChannel
	LoadChannel(ctx context.Context, channel string) (epg.ChannelGuide, error)
}

// SessionManager owns per-viewer guide sessions.
type SessionManager interface {
	Create(ctx context.Context, opts session.Options) (session.Snapshot, error)
	Get(id string) (session.Snapshot, error)
	SetChannel(ctx context.Context, id, channel string) (session.Snapshot, error)
	Next(id string) (session.Snapshot, error)
	Previous(id string) (session.Snapshot, error)
	SelectDay(id string, dayIndex int) (session.Snapshot, error)
	UpdateView(id string, u session.ViewUpdate) (session.Snapshot, error)
	Grid(id string) (guide.GridView, error)
	List(id string) (guide.ListView, error)
	Status(id string) (session.Update, error)
	Subscribe(id string) (<-chan session.Update, func(), error)
	Close(id string) error
}

// GuideHandler serves the grid and list views, both stateless per channel
// and through viewer sessions.
type GuideHandler struct {
	source     ProgramSource
	sessions   SessionManager
	cfgManager *config.Manager
	now        func() time.Time
}

// NewGuideHandler creates a guide handler. A nil now means time.Now.
func NewGuideHandler(source ProgramSource, sessions SessionManager, cfgManager *config.Manager, now func() time.Time) *GuideHandler {
	if now == nil {
		now = time.Now
	}
	return &GuideHandler{
		source:     source,
		sessions:   sessions,
		cfgManager: cfgManager,
		now:        now,
	}
}

func (h *GuideHandler) guideSettings() config.GuideSettings {
	settings, err := h.cfgManager.Load()
	if err != nil {
		log.Printf("[guide] failed to load settings, using defaults: %v", err)
		return config.DefaultSettings().Guide
	}
	return settings.Guide
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[guide] JSON encode error: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, epg.ErrChannelNotFound):
		status = http.StatusNotFound
	case errors.Is(err, epg.ErrSuperseded):
		status = http.StatusConflict
	case errors.Is(err, epg.ErrDisabled):
		status = http.StatusServiceUnavailable
	case errors.Is(err, epg.ErrNoGuideData):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	writeJSONError(w, err.Error(), status)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter %q", name, raw)
	}
	return v, nil
}

func queryBool(r *http.Request, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter %q", name, raw)
	}
	return v, nil
}

// queryCriteria reads category, search and showPast.
func queryCriteria(r *http.Request, gs config.GuideSettings) (guide.Criteria, error) {
	showPast, err := queryBool(r, "showPast", gs.ShowPastPrograms)
	if err != nil {
		return guide.Criteria{}, err
	}
	q := r.URL.Query()
	return guide.Criteria{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   q.Get("search"),
		ShowPast: showPast,
	}, nil
}

func resolveLocation(name, fallback string) (*time.Location, string) {
	if name == "" {
		name = fallback
	}
	loc, ok := timeutil.LoadLocation(name)
	if !ok {
		return time.UTC, "UTC"
	}
	return loc, name
}

// channelView is one channel's programs laid over its day list.
type channelView struct {
	guide epg.ChannelGuide
	loc   *time.Location
	tz    string
	days  []time.Time
	today int
	now   time.Time
}

func (h *GuideHandler) loadChannelView(r *http.Request, gs config.GuideSettings) (channelView, error) {
	channel := mux.Vars(r)["channel"]
	cg, err := h.source.LoadChannel(r.Context(), channel)
	if err != nil {
		return channelView{}, err
	}
	loc, tz := resolveLocation(r.URL.Query().Get("timezone"), gs.Timezone)
	now := h.now()
	days := guide.SpanDays(cg.Programs, loc)
	if len(days) == 0 {
		days = guide.Days(now, 1, loc)
	}
	return channelView{
		guide: cg,
		loc:   loc,
		tz:    tz,
		days:  days,
		today: timeutil.DayDiff(days[0], now, loc),
		now:   now,
	}, nil
}

// ListChannels returns every known channel sorted by LCN.
// GET /api/guide/channels?name=clean|real|location
func (h *GuideHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels := h.source.Channels(r.URL.Query().Get("name"))
	if channels == nil {
		channels = []models.EPGChannel{}
	}
	writeJSON(w, http.StatusOK, channels)
}

type gridResponse struct {
	Channel  models.EPGChannel `json:"channel"`
	Timezone string            `json:"timezone"`
	Report   guide.Report      `json:"report"`
	guide.GridView
}

// Grid lays out a channel's programs for a window of days.
// GET /api/guide/channels/{channel}/grid?start=&visible=&category=&search=&showPast=&timezone=
func (h *GuideHandler) Grid(w http.ResponseWriter, r *http.Request) {
	gs := h.guideSettings()
	criteria, err := queryCriteria(r, gs)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	visible, err := queryInt(r, "visible", gs.VisibleDays)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := h.loadChannelView(r, gs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	start, err := queryInt(r, "start", view.today)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := guide.ViewOptions{
		Criteria: criteria,
		Window:   guide.NewWindow(start, visible, len(view.days)),
		Metrics:  gs.Metrics(),
		Location: view.loc,
	}
	writeJSON(w, http.StatusOK, gridResponse{
		Channel:  view.guide.Channel,
		Timezone: view.tz,
		Report:   view.guide.Report,
		GridView: guide.BuildGrid(view.guide.Programs, view.days, opts, view.now),
	})
}

type listResponse struct {
	Channel  models.EPGChannel `json:"channel"`
	Timezone string            `json:"timezone"`
	guide.ListView
}

// List groups one day of a channel's programs by time of day.
// GET /api/guide/channels/{channel}/list?day=&blocks=&category=&search=&showPast=&timezone=
func (h *GuideHandler) List(w http.ResponseWriter, r *http.Request) {
	gs := h.guideSettings()
	criteria, err := queryCriteria(r, gs)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	blocks, err := queryBool(r, "blocks", gs.ShowTimeBlocks)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := h.loadChannelView(r, gs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	day, err := queryInt(r, "day", min(max(view.today, 0), len(view.days)-1))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := guide.ViewOptions{
		Criteria:   criteria,
		Metrics:    gs.Metrics(),
		Location:   view.loc,
		TimeBlocks: blocks,
	}
	writeJSON(w, http.StatusOK, listResponse{
		Channel:  view.guide.Channel,
		Timezone: view.tz,
		ListView: guide.BuildList(view.guide.Programs, view.days, day, opts, view.now),
	})
}

// Categories returns the sorted distinct categories of a channel's programs.
// GET /api/guide/channels/{channel}/categories
func (h *GuideHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cg, err := h.source.LoadChannel(r.Context(), mux.Vars(r)["channel"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guide.UniqueCategories(guide.Dedupe(cg.Programs)))
}

type nowResponse struct {
	Channel models.EPGChannel `json:"channel"`
	Now     time.Time         `json:"now"`
	Current *guide.Entry      `json:"current,omitempty"`
	Next    *guide.Entry      `json:"next,omitempty"`
}

// Now returns the live program and the one after it.
// GET /api/guide/channels/{channel}/now?timezone=
func (h *GuideHandler) Now(w http.ResponseWriter, r *http.Request) {
	gs := h.guideSettings()
	cg, err := h.source.LoadChannel(r.Context(), mux.Vars(r)["channel"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	loc, _ := resolveLocation(r.URL.Query().Get("timezone"), gs.Timezone)
	now := h.now()

	programs := guide.Dedupe(cg.Programs)
	guide.SortByStart(programs)
	resp := nowResponse{Channel: cg.Channel, Now: now.UTC()}
	current, next := guide.NowNext(programs, now)
	if current != nil {
		e := guide.NewEntry(*current, now, loc)
		resp.Current = &e
	}
	if next != nil {
		e := guide.NewEntry(*next, now, loc)
		resp.Next = &e
	}
	writeJSON(w, http.StatusOK, resp)
}

type createSessionRequest struct {
	Channel     string `json:"channel"`
	Timezone    string `json:"timezone"`
	VisibleDays int    `json:"visibleDays"`
	Category    string `json:"category"`
	Search      string `json:"search"`
	ShowPast    *bool  `json:"showPast"`
	TimeBlocks  *bool  `json:"timeBlocks"`
}

// CreateSession opens a viewer session on a channel.
// POST /api/guide/sessions
func (h *GuideHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Channel) == "" {
		writeJSONError(w, "channel is required", http.StatusBadRequest)
		return
	}

	gs := h.guideSettings()
	showPast := gs.ShowPastPrograms
	if req.ShowPast != nil {
		showPast = *req.ShowPast
	}
	snap, err := h.sessions.Create(r.Context(), session.Options{
		Channel:     strings.TrimSpace(req.Channel),
		Timezone:    req.Timezone,
		VisibleDays: req.VisibleDays,
		Criteria: guide.Criteria{
			Category: strings.TrimSpace(req.Category),
			Search:   req.Search,
			ShowPast: showPast,
		},
		TimeBlocks: req.TimeBlocks,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func sessionID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

func (h *GuideHandler) respondSnapshot(w http.ResponseWriter, snap session.Snapshot, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetSession returns a session's state.
// GET /api/guide/sessions/{id}
func (h *GuideHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Get(sessionID(r))
	h.respondSnapshot(w, snap, err)
}

// NextDays moves the session's window one day later.
// POST /api/guide/sessions/{id}/next
func (h *GuideHandler) NextDays(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Next(sessionID(r))
	h.respondSnapshot(w, snap, err)
}

// PreviousDays moves the session's window one day earlier.
// POST /api/guide/sessions/{id}/previous
func (h *GuideHandler) PreviousDays(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Previous(sessionID(r))
	h.respondSnapshot(w, snap, err)
}

// SetChannel switches the session to another channel.
// PUT /api/guide/sessions/{id}/channel {"channel": "..."}
func (h *GuideHandler) SetChannel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Channel string `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Channel) == "" {
		writeJSONError(w, "channel is required", http.StatusBadRequest)
		return
	}
	snap, err := h.sessions.SetChannel(r.Context(), sessionID(r), strings.TrimSpace(req.Channel))
	h.respondSnapshot(w, snap, err)
}

// SetCriteria replaces the session's filters.
// PUT /api/guide/sessions/{id}/criteria
func (h *GuideHandler) SetCriteria(w http.ResponseWriter, r *http.Request) {
	var req session.ViewUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Category = strings.TrimSpace(req.Category)
	snap, err := h.sessions.UpdateView(sessionID(r), req)
	h.respondSnapshot(w, snap, err)
}

// SelectDay chooses the session's list day.
// PUT /api/guide/sessions/{id}/day {"day": 2}
func (h *GuideHandler) SelectDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Day *int `json:"day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Day == nil {
		writeJSONError(w, "day is required", http.StatusBadRequest)
		return
	}
	snap, err := h.sessions.SelectDay(sessionID(r), *req.Day)
	h.respondSnapshot(w, snap, err)
}

// SessionGrid returns the session's grid view.
// GET /api/guide/sessions/{id}/grid
func (h *GuideHandler) SessionGrid(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.Grid(sessionID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SessionList returns the session's list view.
// GET /api/guide/sessions/{id}/list
func (h *GuideHandler) SessionList(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.List(sessionID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SessionStatus returns the session's live status.
// GET /api/guide/sessions/{id}/status
func (h *GuideHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	u, err := h.sessions.Status(sessionID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// SessionEvents streams status updates as server-sent events until the
// client goes away or the session is closed.
// GET /api/guide/sessions/{id}/events
func (h *GuideHandler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	updates, cancel, err := h.sessions.Subscribe(sessionID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case u, ok := <-updates:
			if !ok {
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(u)
			if err != nil {
				log.Printf("[guide] session %s: encode update: %v", u.SessionID, err)
				continue
			}
			fmt.Fprintf(w, "event: status\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// CloseSession ends a session.
// DELETE /api/guide/sessions/{id}
func (h *GuideHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(sessionID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Options handles CORS preflight requests.
func (h *GuideHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
