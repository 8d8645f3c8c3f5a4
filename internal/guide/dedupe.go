package guide

import "tvguide/models"

// Dedupe drops programs whose identity key was already seen. The first
// occurrence wins and output keeps first-seen order.
func Dedupe(programs []models.Program) []models.Program {
	seen := make(map[string]struct{}, len(programs))
	out := make([]models.Program, 0, len(programs))
	for _, p := range programs {
		key := p.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
