package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicker_RunsImmediatelyAndRepeats(t *testing.T) {
	var tk Ticker
	var calls atomic.Int32
	tk.Reset(10*time.Millisecond, func(ctx context.Context) { calls.Add(1) })
	defer tk.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, tk.Active())
}

func TestTicker_ResetStopsPrevious(t *testing.T) {
	var tk Ticker
	var first, second atomic.Int32

	tk.Reset(5*time.Millisecond, func(ctx context.Context) { first.Add(1) })
	require.Eventually(t, func() bool { return first.Load() >= 1 }, time.Second, time.Millisecond)

	tk.Reset(5*time.Millisecond, func(ctx context.Context) { second.Add(1) })
	frozen := first.Load()
	require.Eventually(t, func() bool { return second.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, frozen, first.Load(), "previous schedule kept firing after Reset")

	tk.Stop()
	stopped := second.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, second.Load())
	assert.False(t, tk.Active())
}

func TestTicker_StopCancelsRunningFn(t *testing.T) {
	var tk Ticker
	entered := make(chan struct{})
	var cancelled atomic.Bool

	tk.Reset(time.Hour, func(ctx context.Context) {
		close(entered)
		<-ctx.Done()
		cancelled.Store(true)
	})
	<-entered
	tk.Stop()
	assert.True(t, cancelled.Load(), "Stop returned before fn observed cancellation")

	tk.Stop()
}
