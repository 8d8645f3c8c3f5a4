package epg

import (
	"regexp"
	"sort"
	"strings"

	"tvguide/models"
	"tvguide/utils/similarity"
)

// fuzzyNameThreshold is the minimum similarity for a display-name match.
const fuzzyNameThreshold = 0.85

var (
	channelPrefixPattern   = regexp.MustCompile(`^[a-z]{2}\s*[\|\-]\s*`)
	channelCountrySuffix   = regexp.MustCompile(`\.[a-z]{2}$`)
	channelNonAlnum        = regexp.MustCompile(`[^a-z0-9]`)
	channelQualitySuffixes = []string{" hd", " sd", " fhd", " uhd", " 4k", "hd", "sd", "fhd", "uhd", "4k"}
)

// normalizeChannelID normalizes a channel ID/name for comparison.
func normalizeChannelID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range channelQualitySuffixes {
		s = strings.TrimSuffix(s, suffix)
	}
	// "us |", "uk -" style country prefixes and ".us" style suffixes
	s = channelPrefixPattern.ReplaceAllString(s, "")
	s = channelCountrySuffix.ReplaceAllString(s, "")
	return channelNonAlnum.ReplaceAllString(s, "")
}

// resolveChannelID maps a channel id, slug or display name onto a key of
// schedule.Channels or schedule.Programs. Candidates are tried in sorted id
// order so the same key always resolves to the same channel. Caller must hold s.mu.
func resolveChannelID(schedule *models.EPGSchedule, key string) (string, bool) {
	lookupID := strings.ToLower(strings.TrimSpace(key))
	if lookupID == "" {
		return "", false
	}
	if _, ok := schedule.Channels[lookupID]; ok {
		return lookupID, true
	}
	if _, ok := schedule.Programs[lookupID]; ok {
		return lookupID, true
	}

	channelIDs := sortedKeys(schedule.Channels)
	for _, id := range channelIDs {
		if strings.EqualFold(schedule.Channels[id].Slug, lookupID) {
			return id, true
		}
	}

	normalizedInput := normalizeChannelID(key)
	if normalizedInput == "" {
		return "", false
	}
	for _, id := range sortedKeys(schedule.Programs) {
		if normalizeChannelID(id) == normalizedInput {
			return id, true
		}
	}
	for _, id := range channelIDs {
		ch := schedule.Channels[id]
		if normalizeChannelID(ch.Name.Clean) == normalizedInput || normalizeChannelID(ch.Name.Real) == normalizedInput {
			return id, true
		}
	}

	// Misspelled display names, e.g. "Chanel Nine" for "Channel Nine".
	names := make([]string, len(channelIDs))
	for i, id := range channelIDs {
		names[i] = schedule.Channels[id].Name.Clean
	}
	if i, _ := similarity.Best(key, names, fuzzyNameThreshold); i >= 0 {
		return channelIDs[i], true
	}
	return "", false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
