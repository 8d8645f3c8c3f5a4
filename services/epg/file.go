package epg

import (
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"tvguide/internal/guide"
	"tvguide/models"
)

// ReadFile loads a saved XMLTV document or JSON guide payload (optionally
// gzipped) and returns one ChannelGuide per channel, sorted by LCN.
func ReadFile(fsys afero.Fs, path string, loc *time.Location) ([]ChannelGuide, guide.Report, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, guide.Report{}, fmt.Errorf("read %s: %w", path, err)
	}
	if mimetype.Detect(data).Is("application/gzip") {
		if data, err = gunzip(data); err != nil {
			return nil, guide.Report{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	schedule := emptySchedule(time.Now().UTC())
	report, _, err := ingest(data, sniff(data), schedule, loc)
	if err != nil {
		return nil, report, fmt.Errorf("%s: %w", path, err)
	}

	channels := make([]models.EPGChannel, 0, len(schedule.Programs))
	for id := range schedule.Programs {
		ch, ok := schedule.Channels[id]
		if !ok {
			ch = models.EPGChannel{ID: id, Name: models.ChannelName{Clean: id}}
		}
		channels = append(channels, ch)
	}
	guide.SortChannels(channels, "clean")

	out := make([]ChannelGuide, 0, len(channels))
	for _, ch := range channels {
		programs := schedule.Programs[ch.ID]
		guide.SortByStart(programs)
		out = append(out, ChannelGuide{Channel: ch, Programs: programs})
	}
	return out, report, nil
}
