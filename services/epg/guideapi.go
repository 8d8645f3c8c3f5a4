package epg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"tvguide/internal/guide"
	"tvguide/models"
)

// maxSiblingFetches bounds concurrent requests when probing channels that share a guide.
const maxSiblingFetches = 4

// guideAPI talks to a JSON guide API laid out as
//
//	{base}/channels/{source}                      channel index
//	{base}/epg/channels/{source}/{slug}?timezone= one channel's multi-day guide
type guideAPI struct {
	f      *fetcher
	base   string
	source string
}

func (a *guideAPI) channelsURL() string {
	return strings.TrimRight(a.base, "/") + "/channels/" + url.PathEscape(a.source)
}

func (a *guideAPI) guideURL(slug, timezone string) string {
	u := strings.TrimRight(a.base, "/") + "/epg/channels/" + url.PathEscape(a.source) + "/" + url.PathEscape(slug)
	if timezone != "" {
		u += "?timezone=" + url.QueryEscape(timezone)
	}
	return u
}

// channels fetches the channel index.
func (a *guideAPI) channels(ctx context.Context) ([]models.GuideChannel, error) {
	body, format, err := a.f.fetch(ctx, a.channelsURL())
	if err != nil {
		return nil, fmt.Errorf("fetch channel list: %w", err)
	}
	if format != formatJSON {
		return nil, fmt.Errorf("channel list is %s, not JSON", format)
	}
	var payload models.ChannelListPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode channel list: %w", err)
	}
	return payload.Data.Channels, nil
}

// guide fetches one channel's guide by slug.
func (a *guideAPI) guide(ctx context.Context, slug, timezone string) (*models.GuidePayload, error) {
	body, format, err := a.f.fetch(ctx, a.guideURL(slug, timezone))
	if err != nil {
		return nil, err
	}
	if format != formatJSON {
		return nil, fmt.Errorf("guide for %s is %s, not JSON", slug, format)
	}
	var payload models.GuidePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode guide for %s: %w", slug, err)
	}
	return &payload, nil
}

// siblings returns the channels sharing target's guide link, in index order.
// A channel without a guide link is its own only sibling.
func siblings(target models.GuideChannel, all []models.GuideChannel) []models.GuideChannel {
	if strings.TrimSpace(target.GuideLink) == "" {
		return []models.GuideChannel{target}
	}
	var out []models.GuideChannel
	for _, ch := range all {
		if ch.GuideLink == target.GuideLink {
			out = append(out, ch)
		}
	}
	if len(out) == 0 {
		out = append(out, target)
	}
	return out
}

type siblingResult struct {
	index   int
	slug    string
	payload *models.GuidePayload
	err     error
}

// guideFromSiblings requests every sibling's guide concurrently and returns
// the first successful response in sibling order.
func (a *guideAPI) guideFromSiblings(ctx context.Context, target models.GuideChannel, all []models.GuideChannel, timezone string) (*models.GuidePayload, error) {
	candidates := siblings(target, all)

	p := pool.NewWithResults[siblingResult]().WithMaxGoroutines(maxSiblingFetches)
	for i, ch := range candidates {
		p.Go(func() siblingResult {
			payload, err := a.guide(ctx, ch.ChannelSlug, timezone)
			return siblingResult{index: i, slug: ch.ChannelSlug, payload: payload, err: err}
		})
	}
	results := p.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	var errs []error
	for _, r := range results {
		if r.err == nil {
			return r.payload, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", r.slug, r.err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: guide link %q: %w", ErrNoGuideData, target.GuideLink, errors.Join(errs...))
}

// findGuideChannel looks a channel up by slug or id, case-insensitively.
func findGuideChannel(all []models.GuideChannel, key string) (models.GuideChannel, bool) {
	for _, ch := range all {
		if strings.EqualFold(ch.ChannelSlug, key) || strings.EqualFold(ch.ChannelID, key) {
			return ch, true
		}
	}
	return models.GuideChannel{}, false
}

// payloadPrograms normalizes every day of a guide payload. Days are visited
// in date order so the report's indices are stable.
func payloadPrograms(payload *models.GuidePayload, channelID string, loc *time.Location) ([]models.Program, guide.Report) {
	dates := make([]string, 0, len(payload.Programs))
	for date := range payload.Programs {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var (
		programs []models.Program
		report   guide.Report
	)
	for _, date := range dates {
		day, r := guide.Normalize(channelID, payload.Programs[date], loc)
		programs = append(programs, day...)
		report.Merge(r)
	}
	guide.SortByStart(programs)
	return programs, report
}

// decodeGuidePayloads accepts either a single guide payload or an array of them.
func decodeGuidePayloads(data []byte) ([]models.GuidePayload, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var list []models.GuidePayload
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode guide payloads: %w", err)
		}
		return list, nil
	}
	var one models.GuidePayload
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("decode guide payload: %w", err)
	}
	return []models.GuidePayload{one}, nil
}
