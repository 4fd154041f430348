package handlers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/services"
)

func TestScheduler_RunsImmediatelyAndOnTicks(t *testing.T) {
	var calls atomic.Int32
	run := func(ctx context.Context) (*services.RefreshResult, error) {
		calls.Add(1)
		return &services.RefreshResult{StartupsChecked: 1}, nil
	}

	s := NewScheduler(t.Context(), run, SchedulerConfig{Interval: 10 * time.Millisecond, RunImmediately: true},
		zaptest.NewLogger(t).Sugar())
	s.Start()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, s.Runs(), 3)
	assert.NoError(t, s.LastError())
}

func TestScheduler_WaitsForFirstTick(t *testing.T) {
	var calls atomic.Int32
	run := func(ctx context.Context) (*services.RefreshResult, error) {
		calls.Add(1)
		return &services.RefreshResult{}, nil
	}

	s := NewScheduler(t.Context(), run, SchedulerConfig{Interval: time.Hour}, zaptest.NewLogger(t).Sugar())
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(0), calls.Load())
}

func TestScheduler_SkipsWhenRunInProgress(t *testing.T) {
	run := func(ctx context.Context) (*services.RefreshResult, error) {
		return nil, services.ErrRefreshInProgress
	}

	s := NewScheduler(t.Context(), run, SchedulerConfig{Interval: time.Hour, RunImmediately: true},
		zaptest.NewLogger(t).Sugar())
	s.Start()
	require.Eventually(t, func() bool { return s.Skipped() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Equal(t, 0, s.Runs())
	assert.True(t, entities.IsConflict(services.ErrRefreshInProgress))
}

func TestScheduler_RecordsFailures(t *testing.T) {
	boom := errors.New("queue unavailable")
	run := func(ctx context.Context) (*services.RefreshResult, error) {
		return nil, boom
	}

	s := NewScheduler(t.Context(), run, SchedulerConfig{Interval: time.Hour, RunImmediately: true},
		zaptest.NewLogger(t).Sugar())
	s.Start()
	require.Eventually(t, func() bool { return s.Runs() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	assert.ErrorIs(t, s.LastError(), boom)
}

func TestScheduler_StopsWithParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	run := func(ctx context.Context) (*services.RefreshResult, error) {
		return &services.RefreshResult{}, nil
	}

	s := NewScheduler(ctx, run, SchedulerConfig{Interval: time.Hour}, zaptest.NewLogger(t).Sugar())
	s.Start()
	cancel()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not observe cancellation")
	}
	s.Stop()
}
