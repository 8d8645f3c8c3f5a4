package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		s1       string
		s2       string
		minScore float64
		maxScore float64
	}{
		{"identical", "ABC TV", "ABC TV", 1.0, 1.0},
		{"case and punctuation", "SBS-Viceland", "sbs viceland", 1.0, 1.0},
		{"ampersand entity", "Food &amp; Travel", "Food and Travel", 1.0, 1.0},
		{"plus", "7plus", "7 plus", 0.8, 1.0},
		{"one typo", "Channel Nien", "Channel Nine", 0.8, 0.9},
		{"different channels", "ABC Kids", "Nine Gem", 0.0, 0.3},
		{"empty", "", "ABC", 0.0, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Similarity(tt.s1, tt.s2)
			assert.GreaterOrEqual(t, score, tt.minScore)
			assert.LessOrEqual(t, score, tt.maxScore)
		})
	}
}

func TestBest(t *testing.T) {
	candidates := []string{"Nine Gem", "Channel Nine", "Channel Ten"}

	i, score := Best("Chanel Nine", candidates, 0.8)
	assert.Equal(t, 1, i)
	assert.Greater(t, score, 0.9)

	i, _ = Best("Sky News", candidates, 0.8)
	assert.Equal(t, -1, i)
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 3, levenshteinDistance([]rune("kitten"), []rune("sitting")))
	assert.Equal(t, 0, levenshteinDistance([]rune("tv"), []rune("tv")))
	assert.Equal(t, 2, levenshteinDistance(nil, []rune("tv")))
}
