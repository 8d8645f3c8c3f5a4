package guide

import (
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"tvguide/models"
	"tvguide/utils/textmatch"
)

// UniqueCategories returns every category used by programs, sorted.
func UniqueCategories(programs []models.Program) []string {
	set := make(map[string]struct{})
	for _, p := range programs {
		for _, c := range p.Categories {
			set[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Indicators are the badges shown next to a title.
type Indicators struct {
	New      bool `json:"new,omitempty"`
	Premiere bool `json:"premiere,omitempty"`
}

// ProgramIndicators derives badges from the explicit flags or from category keywords.
func ProgramIndicators(p models.Program) Indicators {
	ind := Indicators{New: p.New, Premiere: p.Premiere}
	for _, c := range p.Categories {
		lc := strings.ToLower(c)
		if strings.Contains(lc, "premiere") {
			ind.Premiere = true
		}
		// "new" must be a whole word so "News" does not count.
		if slices.Contains(strings.FieldsFunc(lc, isWordSeparator), "new") {
			ind.New = true
		}
	}
	return ind
}

func isWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// placeholderTitles are filler entries feeds emit for gaps in the schedule.
var placeholderTitles = map[string]struct{}{
	"No Data Available":    {},
	"To Be Advised":        {},
	"To Be Advised (cont)": {},
}

// IsPlaceholder reports whether title is schedule filler rather than a real program.
func IsPlaceholder(title string) bool {
	_, ok := placeholderTitles[strings.TrimSpace(textmatch.Decode(title))]
	return ok
}

// categoryKinds maps keywords found in a program's first category to a kind,
// checked in order so "game show" wins over "game" and "show".
var categoryKinds = []struct {
	keyword string
	kind    string
}{
	{"game show", "gameshow"},
	{"award", "award"},
	{"ceremony", "award"},
	{"cooking", "food"},
	{"food", "food"},
	{"documentary", "documentary"},
	{"history", "documentary"},
	{"fashion", "lifestyle"},
	{"lifestyle", "lifestyle"},
	{"film", "film"},
	{"movie", "film"},
	{"game", "game"},
	{"sport", "sport"},
	{"music", "music"},
	{"news", "news"},
	{"reality", "reality"},
	{"series", "series"},
	{"show", "series"},
}

// CategoryKind classifies a program by keywords in its first category, or
// returns "" when nothing matches.
func CategoryKind(categories []string) string {
	if len(categories) == 0 {
		return ""
	}
	first := strings.ToLower(categories[0])
	for _, ck := range categoryKinds {
		if strings.Contains(first, ck.keyword) {
			return ck.kind
		}
	}
	return ""
}

var numericLCN = regexp.MustCompile(`^\d+$`)

// LessByNumber orders channels by LCN: numeric LCNs first in numeric order,
// then other LCNs alphabetically, then channels without an LCN by name.
func LessByNumber(a, b models.EPGChannel, nameVariant string) bool {
	aHas, bHas := a.HasLCN(), b.HasLCN()
	switch {
	case aHas && bHas:
		an, bn := strings.TrimSpace(a.Number), strings.TrimSpace(b.Number)
		aNum, bNum := numericLCN.MatchString(an), numericLCN.MatchString(bn)
		switch {
		case aNum && bNum:
			ai, _ := strconv.Atoi(an)
			bi, _ := strconv.Atoi(bn)
			if ai != bi {
				return ai < bi
			}
			return a.DisplayName(nameVariant) < b.DisplayName(nameVariant)
		case aNum:
			return true
		case bNum:
			return false
		}
		return an < bn
	case aHas:
		return true
	case bHas:
		return false
	}
	return a.DisplayName(nameVariant) < b.DisplayName(nameVariant)
}

// SortChannels sorts channels in place by LessByNumber.
func SortChannels(channels []models.EPGChannel, nameVariant string) {
	sort.SliceStable(channels, func(i, j int) bool {
		return LessByNumber(channels[i], channels[j], nameVariant)
	})
}
