package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvguide/handlers"
)

func TestRegister_CORSAndRoutes(t *testing.T) {
	r := mux.NewRouter()
	Register(r, &handlers.GuideHandler{}, handlers.NewEPGHandler(nil), nil, handlers.NewScheduledTasksHandler(nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/guide/sessions/abc/criteria", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// A nil EPG service answers 503 rather than panicking.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/live/epg/status", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scheduled-tasks", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())

	// Settings routes are only mounted when a handler is supplied.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var match mux.RouteMatch
	assert.True(t, r.Match(httptest.NewRequest(http.MethodGet, "/api/guide/channels/abc/grid", nil), &match))
	assert.Equal(t, "abc", match.Vars["channel"])
	assert.True(t, r.Match(httptest.NewRequest(http.MethodDelete, "/api/guide/sessions/s1", nil), &match))
	assert.Equal(t, "s1", match.Vars["id"])
}
