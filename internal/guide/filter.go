package guide

import (
	"slices"
	"strings"
	"time"

	"tvguide/models"
	"tvguide/utils/textmatch"
)

// Criteria selects which programs a view shows. Each criterion is
// independent; a program is kept only if it passes all of them.
type Criteria struct {
	// Category keeps programs listing this exact category. Empty means any.
	Category string `json:"category,omitempty"`
	// Search is a case-insensitive substring matched against title,
	// subtitle and description. Empty matches everything.
	Search string `json:"search,omitempty"`
	// ShowPast keeps programs that have already ended at Now.
	ShowPast bool `json:"showPast"`
	// Now is the reference instant for ShowPast.
	Now time.Time `json:"-"`
}

// Predicate reports whether a program should be kept.
type Predicate func(models.Program) bool

// Predicates returns the active predicates, cheapest first. Inactive
// criteria contribute nothing.
func (c Criteria) Predicates() []Predicate {
	var preds []Predicate

	if !c.ShowPast {
		now := c.Now
		preds = append(preds, func(p models.Program) bool {
			return !HasEnded(p, now)
		})
	}

	if category := strings.TrimSpace(c.Category); category != "" {
		preds = append(preds, func(p models.Program) bool {
			return slices.Contains(p.Categories, category)
		})
	}

	if m := textmatch.NewMatcher(c.Search); !m.Empty() {
		preds = append(preds, func(p models.Program) bool {
			return m.Match(p.Title, p.Subtitle, p.Description)
		})
	}

	return preds
}

// Match reports whether p passes every criterion.
func (c Criteria) Match(p models.Program) bool {
	return All(c.Predicates()...)(p)
}

// All AND-composes predicates. With no predicates it keeps everything.
func All(preds ...Predicate) Predicate {
	return func(p models.Program) bool {
		for _, pred := range preds {
			if !pred(p) {
				return false
			}
		}
		return true
	}
}

// Filter returns the programs passing every criterion, in input order.
func Filter(programs []models.Program, c Criteria) []models.Program {
	keep := All(c.Predicates()...)
	out := make([]models.Program, 0, len(programs))
	for _, p := range programs {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
