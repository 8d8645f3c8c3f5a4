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
	"tvguide/services/scheduler"
)

type fakeScheduler struct {
	status scheduler.Status
	ran    chan struct{}
}

func (f *fakeScheduler) Status() scheduler.Status { return f.status }

func (f *fakeScheduler) RunNow(ctx context.Context) error {
	close(f.ran)
	return nil
}

func TestScheduledTasksHandler_ListTasks(t *testing.T) {
	last := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	handler := handlers.NewScheduledTasksHandler(&fakeScheduler{status: scheduler.Status{
		Running:  true,
		Interval: 90 * time.Minute,
		LastRun:  &last,
		LastErr:  "feed unavailable",
		Runs:     4,
	}})

	rec := httptest.NewRecorder()
	handler.ListTasks(rec, httptest.NewRequest(http.MethodGet, "/api/scheduled-tasks", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var resp struct {
		Tasks []struct {
			ID              string     `json:"id"`
			Enabled         bool       `json:"enabled"`
			IntervalMinutes int        `json:"intervalMinutes"`
			LastRun         *time.Time `json:"lastRun"`
			LastError       string     `json:"lastError"`
			Runs            int        `json:"runs"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(resp.Tasks))
	}
	task := resp.Tasks[0]
	if task.ID != handlers.RefreshTaskID || !task.Enabled || task.IntervalMinutes != 90 || task.Runs != 4 {
		t.Fatalf("unexpected task %+v", task)
	}
	if task.LastRun == nil || !task.LastRun.Equal(last) || task.LastError != "feed unavailable" {
		t.Fatalf("unexpected last run %+v", task)
	}
}

func TestScheduledTasksHandler_RunTaskNow(t *testing.T) {
	sched := &fakeScheduler{ran: make(chan struct{})}
	handler := handlers.NewScheduledTasksHandler(sched)

	req := httptest.NewRequest(http.MethodPost, "/api/scheduled-tasks/epg-refresh/run", nil)
	req = mux.SetURLVars(req, map[string]string{"taskID": handlers.RefreshTaskID})
	rec := httptest.NewRecorder()
	handler.RunTaskNow(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	select {
	case <-sched.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not started")
	}
}

func TestScheduledTasksHandler_RunUnknownTask(t *testing.T) {
	handler := handlers.NewScheduledTasksHandler(&fakeScheduler{ran: make(chan struct{})})

	req := httptest.NewRequest(http.MethodPost, "/api/scheduled-tasks/backup/run", nil)
	req = mux.SetURLVars(req, map[string]string{"taskID": "backup"})
	rec := httptest.NewRecorder()
	handler.RunTaskNow(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.RunTaskNow(rec, httptest.NewRequest(http.MethodPost, "/api/scheduled-tasks//run", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
