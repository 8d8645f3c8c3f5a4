package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"tvguide/services/scheduler"
)

// RefreshTaskID identifies the guide refresh task.
const RefreshTaskID = "epg-refresh"

// RefreshScheduler is the background loop that keeps guide data current.
type RefreshScheduler interface {
	Status() scheduler.Status
	RunNow(ctx context.Context) error
}

// ScheduledTasksHandler handles scheduled tasks API endpoints
type ScheduledTasksHandler struct {
	scheduler RefreshScheduler
}

// NewScheduledTasksHandler creates a new scheduled tasks handler
func NewScheduledTasksHandler(s RefreshScheduler) *ScheduledTasksHandler {
	return &ScheduledTasksHandler{scheduler: s}
}

type taskStatus struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Enabled         bool       `json:"enabled"`
	IntervalMinutes int        `json:"intervalMinutes"`
	LastRun         *time.Time `json:"lastRun,omitempty"`
	LastError       string     `json:"lastError,omitempty"`
	Runs            int        `json:"runs"`
}

func (h *ScheduledTasksHandler) refreshTask() taskStatus {
	st := h.scheduler.Status()
	return taskStatus{
		ID:              RefreshTaskID,
		Name:            "Guide refresh",
		Enabled:         st.Running,
		IntervalMinutes: int(st.Interval / time.Minute),
		LastRun:         st.LastRun,
		LastError:       st.LastErr,
		Runs:            st.Runs,
	}
}

// ListTasks returns all scheduled tasks with current status
// GET /api/scheduled-tasks
func (h *ScheduledTasksHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": []taskStatus{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": []taskStatus{h.refreshTask()},
	})
}

// RunTaskNow triggers immediate execution of a task
// POST /api/scheduled-tasks/{taskID}/run
func (h *ScheduledTasksHandler) RunTaskNow(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	if taskID == "" {
		writeJSONError(w, "Task ID is required", http.StatusBadRequest)
		return
	}
	if h.scheduler == nil || taskID != RefreshTaskID {
		writeJSONError(w, "task not found", http.StatusNotFound)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := h.scheduler.RunNow(ctx); err != nil {
			log.Printf("[scheduler] manual run failed: %v", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"message": "Task execution started",
	})
}

func (h *ScheduledTasksHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
