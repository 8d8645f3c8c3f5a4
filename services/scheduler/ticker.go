package scheduler

import (
	"context"
	"sync"
	"time"
)

// Ticker runs a function immediately and then at a fixed interval until it
// is reset or stopped. Only one schedule is ever active: Reset stops the
// previous one, and waits for it to exit, before starting the next.
type Ticker struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Reset replaces the current schedule with fn every interval. fn receives a
// context that is cancelled when the schedule is replaced or stopped.
func (t *Ticker) Reset(interval time.Duration, fn func(ctx context.Context)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	if interval <= 0 {
		interval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go func() {
		defer close(done)
		tick := time.NewTicker(interval)
		defer tick.Stop()

		fn(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()
}

// Stop cancels the current schedule and waits for a running fn to return.
// It is safe to call more than once.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Active reports whether a schedule is running.
func (t *Ticker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Ticker) stopLocked() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil
	t.done = nil
}
