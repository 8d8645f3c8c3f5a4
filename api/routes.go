package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"tvguide/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(r *mux.Router, guideHandler *handlers.GuideHandler, epgHandler *handlers.EPGHandler, settingsHandler *handlers.SettingsHandler, tasksHandler *handlers.ScheduledTasksHandler) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	if guideHandler != nil {
		g := api.PathPrefix("/guide").Subrouter()

		// Stateless channel views
		g.HandleFunc("/channels", guideHandler.ListChannels).Methods(http.MethodGet)
		g.HandleFunc("/channels/{channel}/grid", guideHandler.Grid).Methods(http.MethodGet)
		g.HandleFunc("/channels/{channel}/list", guideHandler.List).Methods(http.MethodGet)
		g.HandleFunc("/channels/{channel}/categories", guideHandler.Categories).Methods(http.MethodGet)
		g.HandleFunc("/channels/{channel}/now", guideHandler.Now).Methods(http.MethodGet)

		// Viewer sessions
		g.HandleFunc("/sessions", guideHandler.CreateSession).Methods(http.MethodPost)
		g.HandleFunc("/sessions/{id}", guideHandler.GetSession).Methods(http.MethodGet)
		g.HandleFunc("/sessions/{id}", guideHandler.CloseSession).Methods(http.MethodDelete)
		g.HandleFunc("/sessions/{id}/next", guideHandler.NextDays).Methods(http.MethodPost)
		g.HandleFunc("/sessions/{id}/previous", guideHandler.PreviousDays).Methods(http.MethodPost)
		g.HandleFunc("/sessions/{id}/channel", guideHandler.SetChannel).Methods(http.MethodPut)
		g.HandleFunc("/sessions/{id}/criteria", guideHandler.SetCriteria).Methods(http.MethodPut)
		g.HandleFunc("/sessions/{id}/day", guideHandler.SelectDay).Methods(http.MethodPut)
		g.HandleFunc("/sessions/{id}/grid", guideHandler.SessionGrid).Methods(http.MethodGet)
		g.HandleFunc("/sessions/{id}/list", guideHandler.SessionList).Methods(http.MethodGet)
		g.HandleFunc("/sessions/{id}/status", guideHandler.SessionStatus).Methods(http.MethodGet)
		g.HandleFunc("/sessions/{id}/events", guideHandler.SessionEvents).Methods(http.MethodGet)

		g.PathPrefix("/").HandlerFunc(guideHandler.Options).Methods(http.MethodOptions)
	}

	if epgHandler != nil {
		api.HandleFunc("/live/epg/now", epgHandler.GetNowPlaying).Methods(http.MethodGet)
		api.HandleFunc("/live/epg/now", epgHandler.Options).Methods(http.MethodOptions)
		api.HandleFunc("/live/epg/schedule", epgHandler.GetSchedule).Methods(http.MethodGet)
		api.HandleFunc("/live/epg/schedule", epgHandler.Options).Methods(http.MethodOptions)
		api.HandleFunc("/live/epg/channel/{id}", epgHandler.GetChannelSchedule).Methods(http.MethodGet)
		api.HandleFunc("/live/epg/channel/{id}", epgHandler.Options).Methods(http.MethodOptions)
		api.HandleFunc("/live/epg/status", epgHandler.GetStatus).Methods(http.MethodGet)
		api.HandleFunc("/live/epg/status", epgHandler.Options).Methods(http.MethodOptions)
		api.HandleFunc("/live/epg/issues", epgHandler.GetIssues).Methods(http.MethodGet)
		api.HandleFunc("/live/epg/issues", epgHandler.Options).Methods(http.MethodOptions)
		api.HandleFunc("/live/epg/refresh", epgHandler.Refresh).Methods(http.MethodPost)
		api.HandleFunc("/live/epg/refresh", epgHandler.Options).Methods(http.MethodOptions)
	}

	if settingsHandler != nil {
		api.HandleFunc("/settings", settingsHandler.GetSettings).Methods(http.MethodGet)
		api.HandleFunc("/settings", settingsHandler.PutSettings).Methods(http.MethodPut)
		api.HandleFunc("/settings", handleOptions).Methods(http.MethodOptions)
	}

	if tasksHandler != nil {
		api.HandleFunc("/scheduled-tasks", tasksHandler.ListTasks).Methods(http.MethodGet)
		api.HandleFunc("/scheduled-tasks/{taskID}/run", tasksHandler.RunTaskNow).Methods(http.MethodPost)
		api.PathPrefix("/scheduled-tasks").HandlerFunc(tasksHandler.Options).Methods(http.MethodOptions)
	}

	api.HandleFunc("/health", handleOptions).Methods(http.MethodOptions)
}
