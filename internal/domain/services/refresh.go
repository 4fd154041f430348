package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
)

// Refresh defaults.
const (
	DefaultLookbackDays = 30
	DefaultRefreshPause = time.Second
)

// ErrRefreshInProgress is returned when a run is requested while another is active.
var ErrRefreshInProgress = errors.Mark(errors.New("refresh already in progress"), entities.ErrConflict)

// RefreshOptions configures a refresh run.
type RefreshOptions struct {
	LookbackDays int
	// Pause is the minimum spacing between two startups' source calls.
	Pause time.Duration
}

// SubjectFailure records a startup that could not be processed.
type SubjectFailure struct {
	StartupID string `json:"startupId"`
	Stage     string `json:"stage"`
	Error     string `json:"error"`
}

// RefreshResult summarizes one refresh run.
type RefreshResult struct {
	StartupsChecked int                     `json:"startupsChecked"`
	UpdatesFound    int                     `json:"updatesFound"`
	Updates         []entities.ReviewRecord `json:"updates"`
	Failures        []SubjectFailure        `json:"failures,omitempty"`
	StartedAt       time.Time               `json:"startedAt"`
	FinishedAt      time.Time               `json:"finishedAt"`
}

// EvidenceFilter drops evidence that was already seen. Evidence only counts
// as seen once the pending batch returned by Filter is committed.
type EvidenceFilter interface {
	Filter(ctx context.Context, startup entities.Startup, items []entities.EvidenceItem) ([]entities.EvidenceItem, PendingEvidence)
	Commit(ctx context.Context, pending PendingEvidence)
}

// RefreshService runs the discovery pipeline over every tracked startup.
type RefreshService struct {
	mu sync.Mutex

	registry  ports.StartupRegistry
	source    ports.NewsSource
	extractor Extractor
	resolver  *Resolver
	queue     *ReviewQueue
	audit     ports.AuditLog
	filter    EvidenceFilter
	opts      RefreshOptions
	logger    *zap.SugaredLogger
}

// NewRefreshService creates a refresh service. filter may be nil.
func NewRefreshService(
	registry ports.StartupRegistry,
	source ports.NewsSource,
	extractor Extractor,
	resolver *Resolver,
	queue *ReviewQueue,
	audit ports.AuditLog,
	filter EvidenceFilter,
	opts RefreshOptions,
	logger *zap.SugaredLogger,
) *RefreshService {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultLookbackDays
	}
	if opts.Pause < 0 {
		opts.Pause = 0
	}
	return &RefreshService{
		registry:  registry,
		source:    source,
		extractor: extractor,
		resolver:  resolver,
		queue:     queue,
		audit:     audit,
		filter:    filter,
		opts:      opts,
		logger:    logger,
	}
}

// Run processes every startup once, sequentially. Source and extraction
// failures are recorded per startup and the run continues. A queue failure
// aborts the run. On cancellation the partial result is returned with ctx.Err().
func (s *RefreshService) Run(ctx context.Context) (*RefreshResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer s.mu.Unlock()

	result := &RefreshResult{StartedAt: timeNow().UTC()}

	startups, err := s.registry.ListStartups(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing startups: %w", err)
	}

	limit := rate.Inf
	if s.opts.Pause > 0 {
		limit = rate.Every(s.opts.Pause)
	}
	limiter := rate.NewLimiter(limit, 1)

	s.logger.Infow("Refresh started", "count", len(startups), "lookback_days", s.opts.LookbackDays)

	for _, startup := range startups {
		if err := ctx.Err(); err != nil {
			return s.finish(result), err
		}
		if err := limiter.Wait(ctx); err != nil {
			return s.finish(result), err
		}

		records, err := s.processStartup(ctx, startup, result)
		result.StartupsChecked++
		result.Updates = append(result.Updates, records...)
		result.UpdatesFound = len(result.Updates)
		if err != nil {
			return s.finish(result), err
		}
	}

	s.finish(result)
	s.recordCompletion(ctx, result)
	return result, nil
}

// processStartup runs one subject through source, filter, extractor, resolver
// and queue. Only queue errors are returned.
func (s *RefreshService) processStartup(ctx context.Context, startup entities.Startup, result *RefreshResult) ([]entities.ReviewRecord, error) {
	log := s.logger.With("startup_id", startup.ID)

	items, err := s.source.Search(ctx, startup, s.opts.LookbackDays)
	if err != nil {
		log.Warnw("News search failed", "error", err)
		result.Failures = append(result.Failures, SubjectFailure{StartupID: startup.ID, Stage: "search", Error: err.Error()})
		return nil, nil
	}

	var pending PendingEvidence
	if s.filter != nil && len(items) > 0 {
		items, pending = s.filter.Filter(ctx, startup, items)
	}

	candidates, err := s.extractor.Extract(ctx, startup, items)
	if err != nil {
		log.Warnw("Extraction failed", "error", err)
		result.Failures = append(result.Failures, SubjectFailure{StartupID: startup.ID, Stage: "extract", Error: err.Error()})
		return nil, nil
	}

	canonical := s.resolver.Resolve(candidates)
	log.Debugw("Resolved candidates", "evidence", len(items), "candidates", len(candidates), "count", len(canonical))

	records := make([]entities.ReviewRecord, 0, len(canonical))
	for _, c := range canonical {
		//nolint:loopcall // each record needs its own id and audit entry
		record, err := s.queue.Enqueue(ctx, c)
		if err != nil {
			return records, fmt.Errorf("enqueueing %s/%s: %w", c.StartupID, c.Field, err)
		}
		records = append(records, *record)
	}

	if s.filter != nil {
		s.filter.Commit(ctx, pending)
	}
	return records, nil
}

func (s *RefreshService) finish(result *RefreshResult) *RefreshResult {
	result.FinishedAt = timeNow().UTC()
	s.logger.Infow("Refresh finished",
		"startups_checked", result.StartupsChecked,
		"updates_found", result.UpdatesFound,
		"failures", len(result.Failures),
	)
	return result
}

func (s *RefreshService) recordCompletion(ctx context.Context, result *RefreshResult) {
	if s.audit == nil {
		return
	}
	entry := &entities.AuditEntry{
		Action: entities.AuditRefreshCompleted,
		Details: map[string]any{
			"startups_checked": result.StartupsChecked,
			"updates_found":    result.UpdatesFound,
			"failures":         len(result.Failures),
		},
		CreatedAt: result.FinishedAt,
	}
	if err := s.audit.LogAudit(ctx, entry); err != nil {
		s.logger.Warnw("Recording refresh completion failed", "error", err)
	}
}
