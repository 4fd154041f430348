package entities

import "time"

// AuditAction names a logged operation.
type AuditAction string

const (
	AuditReviewEnqueued   AuditAction = "review.enqueued"
	AuditReviewApproved   AuditAction = "review.approved"
	AuditReviewRejected   AuditAction = "review.rejected"
	AuditRefreshCompleted AuditAction = "refresh.completed"
)

// AuditEntry represents a logged action in the system.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    AuditAction    `json:"action"`
	ReviewID  string         `json:"review_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
