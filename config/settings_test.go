package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	m := NewManagerWithFs(fsys, "cache/settings.json")

	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	exists, err := afero.Exists(fsys, "cache/settings.json")
	require.NoError(t, err)
	assert.True(t, exists)

	tmp, _ := afero.Exists(fsys, "cache/settings.json.tmp")
	assert.False(t, tmp)
}

func TestLoad_BackfillsMissingFields(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "settings.json", []byte(`{
		"server": {"port": 9000},
		"guide": {"timezone": "Australia/Sydney", "showTimeBlocks": false},
		"epg": {"enabled": true, "sources": [{"name": "au", "url": "http://example/au.xml", "enabled": true}]}
	}`), 0o644))

	s, err := NewManagerWithFs(fsys, "settings.json").Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", s.Server.Host)
	assert.Equal(t, 9000, s.Server.Port)
	assert.Equal(t, "Australia/Sydney", s.Guide.Timezone)
	assert.Equal(t, 7, s.Guide.VisibleDays)
	assert.False(t, s.Guide.ShowTimeBlocks)
	assert.True(t, s.Guide.ShowPastPrograms, "absent flag keeps its default")
	assert.Equal(t, 60*time.Second, s.Guide.Tick())

	require.Len(t, s.EPG.Sources, 1)
	assert.Equal(t, EPGSourceXMLTV, s.EPG.Sources[0].Type)
	assert.Equal(t, 7, s.EPG.RetentionDays)
	assert.Equal(t, 3, s.EPG.RetryAttempts)
	assert.Equal(t, 120*time.Second, s.EPG.RequestTimeout())
	assert.Equal(t, "cache", s.Cache.Directory)
}

func TestLoad_MigratesLiveEPG(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "settings.json", []byte(`{
		"live": {"playlistUrl": "x", "epg": {"enabled": true, "xmltvUrl": "http://example/guide.xml"}}
	}`), 0o644))

	s, err := NewManagerWithFs(fsys, "settings.json").Load()
	require.NoError(t, err)
	assert.True(t, s.EPG.Enabled)
	assert.Equal(t, "http://example/guide.xml", s.EPG.XmltvURL)
}

func TestSave_RoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	m := NewManagerWithFs(fsys, "nested/dir/settings.json")

	s := DefaultSettings()
	s.Guide.Timezone = "Europe/London"
	s.EPG.APIBaseURL = "https://guide.example/api"
	require.NoError(t, m.Save(s))

	got, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestLoad_NoPath(t *testing.T) {
	_, err := NewManagerWithFs(afero.NewMemMapFs(), "").Load()
	assert.Error(t, err)
}
