package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
)

var timeNow = time.Now

// ReviewStores groups the persistence ports the review queue writes to.
type ReviewStores struct {
	Reviews  ports.ReviewStore
	Registry ports.StartupRegistry
	History  ports.MetricHistory
	Audit    ports.AuditLog
	Tx       ports.TxManager
}

// ReviewSummary counts review records by status.
type ReviewSummary struct {
	Pending          int            `json:"pending"`
	Approved         int            `json:"approved"`
	Rejected         int            `json:"rejected"`
	PendingByStartup map[string]int `json:"pendingByStartup"`
}

// ReviewQueue is the only writer of review records. Mutations are serialized.
type ReviewQueue struct {
	mu     sync.Mutex
	stores ReviewStores
	logger *zap.SugaredLogger
}

// NewReviewQueue creates a review queue.
func NewReviewQueue(stores ReviewStores, logger *zap.SugaredLogger) *ReviewQueue {
	return &ReviewQueue{stores: stores, logger: logger}
}

// Enqueue records a candidate as a new pending review.
func (q *ReviewQueue) Enqueue(ctx context.Context, c entities.CandidateChange) (*entities.ReviewRecord, error) {
	if !c.Field.IsValid() {
		return nil, entities.Validationf("unknown field %q", c.Field)
	}
	if c.IsNoOp() {
		return nil, entities.Validationf("candidate for %s/%s does not change the value", c.StartupID, c.Field)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	record := entities.NewReviewRecord(uuid.New().String(), c, timeNow().UTC())

	err := q.stores.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := q.stores.Reviews.SaveReview(ctx, &record); err != nil {
			return fmt.Errorf("saving review: %w", err)
		}
		return q.audit(ctx, entities.AuditReviewEnqueued, record.ID, map[string]any{
			"startup_id": record.StartupID,
			"field":      string(record.Field),
			"source":     record.SourceURL,
		})
	})
	if err != nil {
		return nil, err
	}

	q.logger.Debugw("Enqueued review", "review_id", record.ID, "startup_id", record.StartupID, "field", record.Field)
	return &record, nil
}

// ListPending returns pending records in insertion order.
func (q *ReviewQueue) ListPending(ctx context.Context) ([]entities.ReviewRecord, error) {
	return q.List(ctx, ports.ReviewFilter{Status: entities.StatusPending})
}

// List returns records matching the filter in insertion order.
func (q *ReviewQueue) List(ctx context.Context, filter ports.ReviewFilter) ([]entities.ReviewRecord, error) {
	records, err := q.stores.Reviews.ListReviews(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	return records, nil
}

// Get returns a record by ID.
func (q *ReviewQueue) Get(ctx context.Context, id string) (*entities.ReviewRecord, error) {
	record, err := q.stores.Reviews.FindReview(ctx, id)
	if err != nil {
		if entities.IsNotFound(err) {
			return nil, errors.WithHint(err, "run `tracker review list` to see review ids")
		}
		return nil, fmt.Errorf("finding review: %w", err)
	}
	return record, nil
}

// Approve marks a pending record approved and applies its change to the
// startup registry. Both happen in one transaction.
func (q *ReviewQueue) Approve(ctx context.Context, id, reviewedBy string) (*entities.ReviewRecord, error) {
	return q.decide(ctx, id, reviewedBy, func(r *entities.ReviewRecord, at time.Time) error {
		return r.Approve(reviewedBy, at)
	}, q.applyApproved)
}

// Reject marks a pending record rejected with optional notes.
func (q *ReviewQueue) Reject(ctx context.Context, id, reviewedBy, notes string) (*entities.ReviewRecord, error) {
	return q.decide(ctx, id, reviewedBy, func(r *entities.ReviewRecord, at time.Time) error {
		return r.Reject(reviewedBy, notes, at)
	}, func(ctx context.Context, r *entities.ReviewRecord) error {
		return q.audit(ctx, entities.AuditReviewRejected, r.ID, map[string]any{
			"reviewed_by": r.ReviewedBy,
			"notes":       r.Notes,
		})
	})
}

type transition func(r *entities.ReviewRecord, at time.Time) error

type sideEffect func(ctx context.Context, r *entities.ReviewRecord) error

// decide runs the shared approve/reject flow: reviewer check, lookup,
// transition, then persistence and side effects in one transaction.
func (q *ReviewQueue) decide(ctx context.Context, id, reviewedBy string, move transition, after sideEffect) (*entities.ReviewRecord, error) {
	if err := (entities.ReviewRecord{}).CanTransition(reviewedBy); err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	record, err := q.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := move(record, timeNow().UTC()); err != nil {
		return nil, err
	}

	err = q.stores.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := q.stores.Reviews.UpdateReviewDecision(ctx, record); err != nil {
			return fmt.Errorf("updating review: %w", err)
		}
		return after(ctx, record)
	})
	if err != nil {
		if entities.IsConflict(err) || entities.IsValidation(err) || entities.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("recording decision for review %s: %w", id, err)
	}

	q.logger.Infow("Review decided", "review_id", record.ID, "status", record.Status, "reviewed_by", record.ReviewedBy)
	return record, nil
}

func (q *ReviewQueue) applyApproved(ctx context.Context, r *entities.ReviewRecord) error {
	if err := q.stores.Registry.ApplyApprovedChange(ctx, r.StartupID, r.Field, r.NewValue); err != nil {
		return fmt.Errorf("applying change to startup %s: %w", r.StartupID, err)
	}

	version := &entities.MetricVersion{
		ID:        uuid.New().String(),
		StartupID: r.StartupID,
		Field:     r.Field,
		OldValue:  r.OldValue,
		NewValue:  r.NewValue,
		ReviewID:  r.ID,
		CreatedAt: *r.ReviewedAt,
	}
	if err := q.stores.History.SaveMetricVersion(ctx, version); err != nil {
		return fmt.Errorf("saving metric version: %w", err)
	}

	return q.audit(ctx, entities.AuditReviewApproved, r.ID, map[string]any{
		"reviewed_by": r.ReviewedBy,
		"startup_id":  r.StartupID,
		"field":       string(r.Field),
		"version":     version.Version,
	})
}

func (q *ReviewQueue) audit(ctx context.Context, action entities.AuditAction, reviewID string, details map[string]any) error {
	entry := &entities.AuditEntry{
		Action:    action,
		ReviewID:  reviewID,
		Details:   details,
		CreatedAt: timeNow().UTC(),
	}
	if err := q.stores.Audit.LogAudit(ctx, entry); err != nil {
		return fmt.Errorf("logging audit entry: %w", err)
	}
	return nil
}

// Summarize counts records by status and pending records by startup.
func (q *ReviewQueue) Summarize(ctx context.Context) (*ReviewSummary, error) {
	counts, err := q.stores.Reviews.CountReviewsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting reviews: %w", err)
	}

	pending, err := q.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	summary := &ReviewSummary{
		Pending:          counts[entities.StatusPending],
		Approved:         counts[entities.StatusApproved],
		Rejected:         counts[entities.StatusRejected],
		PendingByStartup: make(map[string]int),
	}
	for _, r := range pending {
		summary.PendingByStartup[r.StartupID]++
	}
	return summary, nil
}

// History returns the audit trail of a review, newest first.
func (q *ReviewQueue) History(ctx context.Context, reviewID string) ([]entities.AuditEntry, error) {
	entries, err := q.stores.Audit.ListAudit(ctx, reviewID, 0)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	return entries, nil
}
