// Package similarity scores how alike two channel names are, for matching
// playlist channel names against guide channels that are spelled differently.
package similarity

import (
	"strings"
	"unicode"

	"tvguide/utils/textmatch"
)

// Similarity returns a score between 0.0 (completely different) and 1.0
// (identical after normalization), based on Levenshtein distance.
func Similarity(s1, s2 string) float64 {
	s1 = normalize(s1)
	s2 = normalize(s2)

	if s1 == s2 {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0.0
	}

	r1, r2 := []rune(s1), []rune(s2)
	return 1.0 - float64(levenshteinDistance(r1, r2))/float64(max(len(r1), len(r2)))
}

// Best returns the index of the candidate most similar to target and its
// score, or -1 when no candidate reaches threshold. Ties go to the earlier
// candidate.
func Best(target string, candidates []string, threshold float64) (int, float64) {
	best, bestScore := -1, 0.0
	for i, c := range candidates {
		if score := Similarity(target, c); score >= threshold && score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}

// normalize folds case and HTML entities, spells out "&" and "+", and keeps
// only letters and digits separated by single spaces.
func normalize(s string) string {
	s = strings.NewReplacer("&", " and ", "+", " plus ").Replace(textmatch.Fold(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// levenshteinDistance is the edit distance between r1 and r2, using one row.
func levenshteinDistance(r1, r2 []rune) int {
	row := make([]int, len(r2)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			next := min(row[j]+1, row[j-1]+1, diag+cost)
			diag, row[j] = row[j], next
		}
	}
	return row[len(r2)]
}
