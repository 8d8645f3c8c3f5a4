package guide

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayWindow_NextPreviousStayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, daysLength := range []int{0, 1, 3, 7, 8, 14} {
		w := NewWindow(0, 7, daysLength)
		for step := 0; step < 200; step++ {
			if rng.Intn(2) == 0 {
				w = w.Next(daysLength)
			} else {
				w = w.Previous()
			}
			require.GreaterOrEqual(t, w.StartIndex, 0, "daysLength %d step %d", daysLength, step)
			require.LessOrEqual(t, w.StartIndex, max(0, daysLength-w.VisibleCount), "daysLength %d step %d", daysLength, step)
			require.Equal(t, 7, w.VisibleCount)
		}
	}
}

func TestDayWindow_Fortnight(t *testing.T) {
	w := NewWindow(0, 7, 14)
	assert.False(t, w.CanPrevious())
	assert.True(t, w.CanNext(14))

	for i := 0; i < 10; i++ {
		w = w.Next(14)
	}
	assert.Equal(t, 7, w.StartIndex)
	assert.False(t, w.CanNext(14))
	assert.Equal(t, 14, w.End())

	w = w.Previous()
	assert.Equal(t, 6, w.StartIndex)
	assert.True(t, w.Contains(6))
	assert.True(t, w.Contains(12))
	assert.False(t, w.Contains(13))
	assert.False(t, w.Contains(5))
}

func TestDayWindow_FewerDaysThanVisible(t *testing.T) {
	w := NewWindow(4, 7, 3)
	assert.Equal(t, 0, w.StartIndex)
	assert.False(t, w.CanNext(3))
	assert.False(t, w.CanPrevious())
	assert.Equal(t, 0, w.Next(3).StartIndex)
	assert.Equal(t, 0, w.Previous().StartIndex)
}

func TestDayWindow_Clamp(t *testing.T) {
	tests := []struct {
		name  string
		start int
		want  int
	}{
		{"negative", -3, 0},
		{"in range", 2, 2},
		{"past end", 20, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := DayWindow{StartIndex: tt.start, VisibleCount: 7}.Clamp(10)
			assert.Equal(t, tt.want, w.StartIndex)
		})
	}
}

func TestNewWindow_MinimumOneVisible(t *testing.T) {
	assert.Equal(t, 1, NewWindow(0, 0, 7).VisibleCount)
}
