package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"tvguide/internal/guide"
	"tvguide/models"
)

// EPGService is the program store behind the EPG admin endpoints.
type EPGService interface {
	GetNowPlaying(channelIDs []string) []models.EPGNowPlaying
	GetSchedule(channelID string, start, end time.Time) []models.Program
	GetChannelSchedule(channelID string, date time.Time, loc *time.Location) []models.Program
	GetStatus() models.EPGStatus
	Issues() guide.Report
	Refresh(ctx context.Context) error
}

// EPGHandler handles EPG-related HTTP requests.
type EPGHandler struct {
	epgService EPGService
	now        func() time.Time
}

// NewEPGHandler creates a new EPG handler.
func NewEPGHandler(epgService EPGService) *EPGHandler {
	return &EPGHandler{
		epgService: epgService,
		now:        time.Now,
	}
}

func (h *EPGHandler) available(w http.ResponseWriter) bool {
	if h.epgService == nil {
		writeJSONError(w, "EPG service not available", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// GetNowPlaying returns current and next programs for specified channels.
// GET /api/live/epg/now?channels=ch1,ch2,ch3
func (h *EPGHandler) GetNowPlaying(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	channelsParam := r.URL.Query().Get("channels")
	if channelsParam == "" {
		writeJSONError(w, "missing channels parameter", http.StatusBadRequest)
		return
	}

	var channelIDs []string
	for _, id := range strings.Split(channelsParam, ",") {
		if id = strings.TrimSpace(id); id != "" {
			channelIDs = append(channelIDs, id)
		}
	}

	writeJSON(w, http.StatusOK, h.epgService.GetNowPlaying(channelIDs))
}

type scheduleResponse struct {
	ChannelID string           `json:"channelId"`
	Date      string           `json:"date,omitempty"`
	Programs  []models.Program `json:"programs"`
}

// GetSchedule returns program schedule for a channel within a time range.
// GET /api/live/epg/schedule?channel=ch1&days=1
func (h *EPGHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	channelID := r.URL.Query().Get("channel")
	if channelID == "" {
		writeJSONError(w, "missing channel parameter", http.StatusBadRequest)
		return
	}

	// Default to 1 day, at most two weeks
	days, err := queryInt(r, "days", 1)
	if err != nil || days <= 0 || days > 14 {
		days = 1
	}

	start := h.now().UTC()
	end := start.Add(time.Duration(days) * 24 * time.Hour)

	programs := h.epgService.GetSchedule(channelID, start, end)
	if programs == nil {
		programs = []models.Program{}
	}
	writeJSON(w, http.StatusOK, scheduleResponse{ChannelID: channelID, Programs: programs})
}

// GetChannelSchedule returns the full day schedule for a channel.
// GET /api/live/epg/channel/{id}?date=2024-01-15&timezone=Australia/Sydney
func (h *EPGHandler) GetChannelSchedule(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	channelID := mux.Vars(r)["id"]
	if channelID == "" {
		writeJSONError(w, "missing channel ID", http.StatusBadRequest)
		return
	}

	loc, _ := resolveLocation(r.URL.Query().Get("timezone"), "UTC")

	// Parse date (default to today)
	date := h.now().In(loc)
	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateParam, loc)
		if err != nil {
			writeJSONError(w, "invalid date parameter", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	programs := h.epgService.GetChannelSchedule(channelID, date, loc)
	if programs == nil {
		programs = []models.Program{}
	}
	writeJSON(w, http.StatusOK, scheduleResponse{
		ChannelID: channelID,
		Date:      date.Format("2006-01-02"),
		Programs:  programs,
	})
}

// GetStatus returns the current EPG service status.
// GET /api/live/epg/status
func (h *EPGHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	writeJSON(w, http.StatusOK, h.epgService.GetStatus())
}

// GetIssues returns the data-quality report of the last refresh.
// GET /api/live/epg/issues
func (h *EPGHandler) GetIssues(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	writeJSON(w, http.StatusOK, h.epgService.Issues())
}

// Refresh triggers a manual EPG refresh.
// POST /api/live/epg/refresh
func (h *EPGHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	// Run refresh in background with independent context (not tied to HTTP request)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := h.epgService.Refresh(ctx); err != nil {
			log.Printf("[epg] refresh error: %v", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
}

// Options handles CORS preflight requests.
func (h *EPGHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
