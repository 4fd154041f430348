package handlers

import (
	"context"
	"strings"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
	"github.com/ersonp/diagnostics-tracker/internal/domain/services"
)

// ReviewHandler exposes the review queue to the CLI.
type ReviewHandler struct {
	queue           *services.ReviewQueue
	defaultReviewer string
}

// NewReviewHandler creates a review handler. defaultReviewer is used when a
// decision names no reviewer; it usually comes from TRACKER_REVIEWER.
func NewReviewHandler(queue *services.ReviewQueue, defaultReviewer string) *ReviewHandler {
	return &ReviewHandler{
		queue:           queue,
		defaultReviewer: strings.TrimSpace(defaultReviewer),
	}
}

// ListOptions filters a review listing.
type ListOptions struct {
	Status    string
	StartupID string
	Limit     int
}

// List returns review records matching opts in insertion order.
func (h *ReviewHandler) List(ctx context.Context, opts ListOptions) ([]entities.ReviewRecord, error) {
	filter := ports.ReviewFilter{StartupID: opts.StartupID, Limit: opts.Limit}
	if opts.Status != "" {
		status, err := entities.ParseReviewStatus(opts.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}
	return h.queue.List(ctx, filter)
}

// Pending returns every pending record.
func (h *ReviewHandler) Pending(ctx context.Context) ([]entities.ReviewRecord, error) {
	return h.queue.ListPending(ctx)
}

// Show returns one record and its audit trail.
func (h *ReviewHandler) Show(ctx context.Context, id string) (*entities.ReviewRecord, []entities.AuditEntry, error) {
	record, err := h.queue.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	trail, err := h.queue.History(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return record, trail, nil
}

// Summary returns queue counts.
func (h *ReviewHandler) Summary(ctx context.Context) (*services.ReviewSummary, error) {
	return h.queue.Summarize(ctx)
}

// Approve approves a record and applies its change.
func (h *ReviewHandler) Approve(ctx context.Context, id, reviewer string) (*entities.ReviewRecord, error) {
	return h.queue.Approve(ctx, id, h.reviewer(reviewer))
}

// Reject rejects a record.
func (h *ReviewHandler) Reject(ctx context.Context, id, reviewer, notes string) (*entities.ReviewRecord, error) {
	return h.queue.Reject(ctx, id, h.reviewer(reviewer), notes)
}

// Reviewer returns the effective reviewer name for an explicit value.
func (h *ReviewHandler) Reviewer(explicit string) string {
	return h.reviewer(explicit)
}

func (h *ReviewHandler) reviewer(explicit string) string {
	if r := strings.TrimSpace(explicit); r != "" {
		return r
	}
	return h.defaultReviewer
}
