package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvguide/config"
)

type refresherFunc func(ctx context.Context) error

func (f refresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

var errOff = errors.New("off")

func newManager(t *testing.T) *config.Manager {
	t.Helper()
	mgr := config.NewManagerWithFs(afero.NewMemMapFs(), "settings.json")
	_, err := mgr.Load()
	require.NoError(t, err)
	return mgr
}

func TestService_StartRunsImmediately(t *testing.T) {
	var calls atomic.Int32
	svc := NewService(newManager(t), refresherFunc(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}))

	require.NoError(t, svc.Start(context.Background()))
	require.NoError(t, svc.Start(context.Background()), "second Start is a no-op")
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	st := svc.Status()
	assert.True(t, st.Running)
	assert.Equal(t, 6*time.Hour, st.Interval)

	require.NoError(t, svc.Stop(context.Background()))
	assert.False(t, svc.Status().Running)
	assert.Equal(t, int32(1), calls.Load())
}

func TestService_RunNowRecordsErrors(t *testing.T) {
	fail := errors.New("upstream down")
	var next error
	svc := NewService(newManager(t), refresherFunc(func(ctx context.Context) error { return next }), errOff)

	next = fail
	assert.ErrorIs(t, svc.RunNow(context.Background()), fail)
	assert.Equal(t, "upstream down", svc.Status().LastErr)

	next = errOff
	assert.NoError(t, svc.RunNow(context.Background()))
	st := svc.Status()
	assert.Equal(t, 1, st.Runs, "a skipped refresh did no work and is not counted")
	assert.Equal(t, "upstream down", st.LastErr)

	next = nil
	assert.NoError(t, svc.RunNow(context.Background()))
	st = svc.Status()
	assert.Equal(t, 2, st.Runs)
	assert.Empty(t, st.LastErr)
	require.NotNil(t, st.LastRun)
}

func TestService_StopCancelsRefresh(t *testing.T) {
	entered := make(chan struct{})
	svc := NewService(newManager(t), refresherFunc(func(ctx context.Context) error {
		close(entered)
		<-ctx.Done()
		return ctx.Err()
	}))

	require.NoError(t, svc.Start(context.Background()))
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Stop(ctx))
	assert.NoError(t, ctx.Err(), "Stop waited for the timeout instead of cancelling")
}

func TestService_ReloadReschedulesOnIntervalChange(t *testing.T) {
	mgr := newManager(t)
	var calls atomic.Int32
	svc := NewService(mgr, refresherFunc(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}))

	require.NoError(t, svc.Reload(), "reload before start is a no-op")
	assert.False(t, svc.Status().Running)

	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, svc.Reload())
	assert.Equal(t, int32(1), calls.Load(), "unchanged interval keeps the loop")

	settings, err := mgr.Load()
	require.NoError(t, err)
	settings.EPG.RefreshIntervalMinutes = 45
	require.NoError(t, mgr.Save(settings))

	require.NoError(t, svc.Reload())
	assert.Equal(t, 45*time.Minute, svc.Status().Interval)
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond, "rescheduling refreshes immediately")
}
