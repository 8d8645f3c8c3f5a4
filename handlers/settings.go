package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"tvguide/config"
)

// Reloader is implemented by services that cache configuration at startup.
type Reloader interface {
	Reload() error
}

type SettingsHandler struct {
	Manager   *config.Manager
	reloaders map[string]Reloader
}

func NewSettingsHandler(m *config.Manager) *SettingsHandler {
	return &SettingsHandler{Manager: m, reloaders: make(map[string]Reloader)}
}

// AddReloader registers a service that is reloaded after settings are saved.
func (h *SettingsHandler) AddReloader(name string, r Reloader) {
	if r == nil {
		return
	}
	h.reloaders[name] = r
}

// SettingsResponse wraps config.Settings with the effective timezone.
type SettingsResponse struct {
	config.Settings
	EffectiveTimezone string `json:"effectiveTimezone"`
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Manager.Load()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, tzName := resolveLocation("", s.Guide.Timezone)
	writeJSON(w, http.StatusOK, SettingsResponse{Settings: s, EffectiveTimezone: tzName})
}

func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var s config.Settings
	// Unknown fields are tolerated so older clients can still save.
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Manager.Save(s); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	saved, err := h.Manager.Load()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.reloadServices()

	writeJSON(w, http.StatusOK, saved)
}

func (h *SettingsHandler) reloadServices() {
	for name, r := range h.reloaders {
		if err := r.Reload(); err != nil {
			log.Printf("[settings] failed to reload %s: %v", name, err)
			continue
		}
		log.Printf("[settings] reloaded %s", name)
	}
}
