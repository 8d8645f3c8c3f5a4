package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"tvguide/config"
)

// Refresher is the work the scheduler runs on every interval.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Status describes the refresh loop.
type Status struct {
	Running  bool          `json:"running"`
	Interval time.Duration `json:"interval"`
	LastRun  *time.Time    `json:"lastRun,omitempty"`
	LastErr  string        `json:"lastError,omitempty"`
	Runs     int           `json:"runs"`
}

// Service periodically refreshes guide data on the configured interval.
type Service struct {
	configManager *config.Manager
	refresher     Refresher
	skip          []error // errors that are logged quietly and not counted as runs

	ticker Ticker

	lifecycle sync.Mutex // serialises Start, Stop and Reload; never held by a refresh

	mu       sync.RWMutex
	ctx      context.Context
	running  bool
	interval time.Duration
	lastRun  time.Time
	lastErr  string
	runs     int
}

// NewService creates a new scheduler service. Errors matching any of skip
// (via errors.Is) are not treated as failures.
func NewService(configManager *config.Manager, refresher Refresher, skip ...error) *Service {
	return &Service{
		configManager: configManager,
		refresher:     refresher,
		skip:          skip,
	}
}

// Start begins the background refresh loop. The first refresh runs immediately.
func (s *Service) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()
	if running {
		return nil
	}

	settings, err := s.configManager.Load()
	if err != nil {
		return err
	}
	interval := refreshInterval(settings)

	s.mu.Lock()
	s.ctx = ctx
	s.interval = interval
	s.running = true
	s.mu.Unlock()

	s.schedule(ctx, interval)

	log.Printf("[scheduler] EPG refresh scheduled every %s", interval)
	return nil
}

// Reload re-reads the refresh interval and restarts the loop when it changed.
func (s *Service) Reload() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	settings, err := s.configManager.Load()
	if err != nil {
		return err
	}
	interval := refreshInterval(settings)

	s.mu.Lock()
	if !s.running || interval == s.interval {
		s.mu.Unlock()
		return nil
	}
	s.interval = interval
	ctx := s.ctx
	s.mu.Unlock()

	// Reset waits for an in-flight refresh, which takes s.mu when it finishes.
	s.schedule(ctx, interval)
	log.Printf("[scheduler] EPG refresh rescheduled every %s", interval)
	return nil
}

func (s *Service) schedule(ctx context.Context, interval time.Duration) {
	s.ticker.Reset(interval, func(tickCtx context.Context) {
		runCtx, cancel := mergeCancel(ctx, tickCtx)
		defer cancel()
		s.runOnce(runCtx)
	})
}

func refreshInterval(settings config.Settings) time.Duration {
	interval := time.Duration(settings.EPG.RefreshIntervalMinutes) * time.Minute
	if interval < time.Minute {
		return 6 * time.Hour
	}
	return interval
}

// Stop stops the loop and waits for an in-flight refresh to return, or for ctx to expire.
func (s *Service) Stop(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.ticker.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[scheduler] Scheduler service stopped gracefully")
	case <-ctx.Done():
		log.Println("[scheduler] Scheduler service stopped (timeout)")
	}
	return nil
}

// RunNow triggers a refresh outside the schedule.
func (s *Service) RunNow(ctx context.Context) error {
	return s.runOnce(ctx)
}

func (s *Service) runOnce(ctx context.Context) error {
	started := time.Now()
	err := s.refresher.Refresh(ctx)

	for _, skip := range s.skip {
		if errors.Is(err, skip) {
			log.Printf("[scheduler] refresh skipped: %v", err)
			return nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = started
	s.runs++
	if err != nil {
		log.Printf("[scheduler] refresh failed after %s: %v", time.Since(started).Round(time.Millisecond), err)
		s.lastErr = err.Error()
		return err
	}
	s.lastErr = ""
	log.Printf("[scheduler] refresh finished in %s", time.Since(started).Round(time.Millisecond))
	return nil
}

// Status returns the loop's state.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{Running: s.running, Interval: s.interval, LastErr: s.lastErr, Runs: s.runs}
	if !s.lastRun.IsZero() {
		last := s.lastRun
		st.LastRun = &last
	}
	return st
}

// mergeCancel returns a context cancelled when either parent is done.
func mergeCancel(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
