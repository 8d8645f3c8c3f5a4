package epg

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSuperseded is returned by Latest.Do when a newer call started before this one finished.
var ErrSuperseded = errors.New("request superseded by a newer one")

// Latest runs loads so that only the most recent one is delivered. Starting
// a new load cancels the context of the one in flight, and a result that
// arrives after it was superseded is discarded.
type Latest struct {
	mu     sync.Mutex
	token  uuid.UUID
	cancel context.CancelFunc
}

// Do runs fn with a context that is cancelled when Do is called again or Stop
// is called. It returns ErrSuperseded if fn's result is no longer wanted.
func Do[T any](l *Latest, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	token, runCtx := l.begin(ctx)
	v, err := fn(runCtx)
	if !l.finish(token) {
		var zero T
		return zero, ErrSuperseded
	}
	return v, err
}

// Commit is Do followed by commit, which runs only if the result is still
// current. No newer call can begin until commit returns, so a result that has
// been committed can never overwrite a later one.
func Commit[T any](l *Latest, ctx context.Context, fn func(ctx context.Context) (T, error), commit func(T) error) error {
	token, runCtx := l.begin(ctx)
	v, err := fn(runCtx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.releaseLocked(token) {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	return commit(v)
}

func (l *Latest) begin(ctx context.Context) (uuid.UUID, context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.token = uuid.New()
	l.cancel = cancel
	return l.token, runCtx
}

// finish reports whether token is still current and releases its context.
func (l *Latest) finish(token uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.releaseLocked(token)
}

func (l *Latest) releaseLocked(token uuid.UUID) bool {
	if l.token != token {
		return false
	}
	l.cancel()
	l.cancel = nil
	l.token = uuid.Nil
	return true
}

// Stop cancels any load in flight; its result will be discarded.
func (l *Latest) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.token = uuid.Nil
}
