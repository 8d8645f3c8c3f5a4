package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"tvguide/handlers"
	"tvguide/internal/guide"
	"tvguide/models"
)

type fakeEPGService struct {
	nowIDs    []string
	dayDate   time.Time
	dayLoc    *time.Location
	refreshed chan struct{}
}

func (f *fakeEPGService) GetNowPlaying(channelIDs []string) []models.EPGNowPlaying {
	f.nowIDs = channelIDs
	out := make([]models.EPGNowPlaying, 0, len(channelIDs))
	for _, id := range channelIDs {
		out = append(out, models.EPGNowPlaying{ChannelID: id})
	}
	return out
}

func (f *fakeEPGService) GetSchedule(channelID string, start, end time.Time) []models.Program {
	return nil
}

func (f *fakeEPGService) GetChannelSchedule(channelID string, date time.Time, loc *time.Location) []models.Program {
	f.dayDate = date
	f.dayLoc = loc
	return []models.Program{{ChannelID: channelID, Title: "News"}}
}

func (f *fakeEPGService) GetStatus() models.EPGStatus {
	return models.EPGStatus{Enabled: true, ChannelCount: 3}
}

func (f *fakeEPGService) Issues() guide.Report {
	return guide.Report{Total: 4, Skipped: 1}
}

func (f *fakeEPGService) Refresh(ctx context.Context) error {
	close(f.refreshed)
	return nil
}

func TestEPGHandler_GetNowPlaying(t *testing.T) {
	svc := &fakeEPGService{}
	handler := handlers.NewEPGHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/live/epg/now?channels=abc,+sbs+,,", nil)
	rec := httptest.NewRecorder()
	handler.GetNowPlaying(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if len(svc.nowIDs) != 2 || svc.nowIDs[0] != "abc" || svc.nowIDs[1] != "sbs" {
		t.Fatalf("unexpected channel ids %q", svc.nowIDs)
	}
}

func TestEPGHandler_GetNowPlayingMissingChannels(t *testing.T) {
	handler := handlers.NewEPGHandler(&fakeEPGService{})

	req := httptest.NewRequest(http.MethodGet, "/api/live/epg/now", nil)
	rec := httptest.NewRecorder()
	handler.GetNowPlaying(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestEPGHandler_GetScheduleEmpty(t *testing.T) {
	handler := handlers.NewEPGHandler(&fakeEPGService{})

	req := httptest.NewRequest(http.MethodGet, "/api/live/epg/schedule?channel=abc&days=99", nil)
	rec := httptest.NewRecorder()
	handler.GetSchedule(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var resp struct {
		ChannelID string            `json:"channelId"`
		Programs  []json.RawMessage `json:"programs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ChannelID != "abc" || resp.Programs == nil || len(resp.Programs) != 0 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestEPGHandler_GetChannelSchedule(t *testing.T) {
	svc := &fakeEPGService{}
	handler := handlers.NewEPGHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/live/epg/channel/abc?date=2024-04-06&timezone=Australia/Sydney", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "abc"})
	rec := httptest.NewRecorder()
	handler.GetChannelSchedule(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if svc.dayLoc == nil || svc.dayLoc.String() != "Australia/Sydney" {
		t.Fatalf("unexpected location %v", svc.dayLoc)
	}
	if got := svc.dayDate.Format("2006-01-02"); got != "2024-04-06" {
		t.Fatalf("unexpected date %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/live/epg/channel/abc?date=April", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "abc"})
	rec = httptest.NewRecorder()
	handler.GetChannelSchedule(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestEPGHandler_StatusAndIssues(t *testing.T) {
	handler := handlers.NewEPGHandler(&fakeEPGService{})

	rec := httptest.NewRecorder()
	handler.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/live/epg/status", nil))
	var status models.EPGStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if !status.Enabled || status.ChannelCount != 3 {
		t.Fatalf("unexpected status %+v", status)
	}

	rec = httptest.NewRecorder()
	handler.GetIssues(rec, httptest.NewRequest(http.MethodGet, "/api/live/epg/issues", nil))
	var report guide.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Total != 4 || report.Skipped != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestEPGHandler_RefreshRunsInBackground(t *testing.T) {
	svc := &fakeEPGService{refreshed: make(chan struct{})}
	handler := handlers.NewEPGHandler(svc)

	rec := httptest.NewRecorder()
	handler.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/live/epg/refresh", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	select {
	case <-svc.refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh was not started")
	}
}
