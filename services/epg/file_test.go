package epg

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "channel": {"channel_id": "ABC1", "channel_slug": "abc", "channel_name": "ABC", "channel_number": "2"},
  "programs": {
    "2024-01-02": [
      {"title": "Quiz", "start_time": "2024-01-02T08:00:00Z", "end_time": "2024-01-02T08:30:00Z"}
    ],
    "2024-01-01": [
      {"title": "News", "start_time": "2024-01-01T07:00:00Z", "end_time": "2024-01-01T08:00:00Z"},
      {"title": "Broken", "start_time": "later", "end_time": "2024-01-01T09:00:00Z"}
    ]
  }
}`

func TestReadFile_XMLTVGzipped(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "guide.xml.gz", gzipped(t, sampleXMLTV), 0o644))

	guides, report, err := ReadFile(fsys, "guide.xml.gz", time.UTC)
	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.Equal(t, "2", guides[0].Channel.Number)
	require.Len(t, guides[0].Programs, 2)
	assert.Equal(t, "Breakfast", guides[0].Programs[0].Title)
	assert.Equal(t, 1, report.Skipped)
}

func TestReadFile_JSONPayload(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "abc.json", []byte(samplePayload), 0o644))

	guides, report, err := ReadFile(fsys, "abc.json", time.UTC)
	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.Equal(t, "abc1", guides[0].Channel.ID)
	require.Len(t, guides[0].Programs, 2)
	assert.Equal(t, "News", guides[0].Programs[0].Title)
	assert.Equal(t, "Quiz", guides[0].Programs[1].Title)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Skipped)
}

func TestReadFile_Errors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, _, err := ReadFile(fsys, "missing.json", time.UTC)
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fsys, "notes.txt", []byte("hello"), 0o644))
	_, _, err = ReadFile(fsys, "notes.txt", time.UTC)
	assert.ErrorContains(t, err, "unrecognised")
}
