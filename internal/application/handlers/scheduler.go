package handlers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/services"
)

// RunFunc performs one refresh run.
type RunFunc func(ctx context.Context) (*services.RefreshResult, error)

// SchedulerConfig configures the periodic refresh trigger.
type SchedulerConfig struct {
	Interval time.Duration
	// RunImmediately triggers a run on start instead of waiting one interval.
	RunImmediately bool
}

// Scheduler triggers refresh runs on a fixed interval until stopped.
// Ticks that arrive while a run is active are dropped.
type Scheduler struct {
	run      RunFunc
	interval time.Duration
	now      bool
	logger   *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	runs    int
	skipped int
	lastErr error
}

// NewScheduler creates a scheduler bound to ctx.
func NewScheduler(ctx context.Context, run RunFunc, cfg SchedulerConfig, logger *zap.SugaredLogger) *Scheduler {
	schedCtx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		run:      run,
		interval: cfg.Interval,
		now:      cfg.RunImmediately,
		logger:   logger,
		ctx:      schedCtx,
		cancel:   cancel,
	}
}

// Start begins the ticker loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.loop()
	s.logger.Infow("Refresh scheduler started", "interval", s.interval)
}

// Stop cancels the loop and waits for an active run to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Infow("Refresh scheduler stopped", "runs", s.Runs())
}

// Done is closed when the scheduler's context ends.
func (s *Scheduler) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Runs returns the number of completed runs.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Skipped returns the number of triggers dropped because a run was active elsewhere.
func (s *Scheduler) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// LastError returns the error of the most recent run, if any.
func (s *Scheduler) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	if s.now {
		s.trigger()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.trigger()
		}
	}
}

func (s *Scheduler) trigger() {
	result, err := s.run(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case err == nil:
		s.runs++
		s.lastErr = nil
		s.logger.Infow("Scheduled refresh finished",
			"startups_checked", result.StartupsChecked,
			"count", result.UpdatesFound,
			"failures", len(result.Failures))
	case entities.IsConflict(err):
		// A manual run holds the lock.
		s.skipped++
		s.logger.Warnw("Scheduled refresh skipped", "error", err)
	case s.ctx.Err() != nil:
		s.lastErr = err
	default:
		s.runs++
		s.lastErr = err
		s.logger.Errorw("Scheduled refresh failed", "error", err)
	}
}
