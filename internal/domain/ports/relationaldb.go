package ports

import (
	"context"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// ReviewFilter narrows a review listing. Zero values match everything.
type ReviewFilter struct {
	Status    entities.ReviewStatus
	StartupID string
	Limit     int
}

// ReviewStore persists review records.
type ReviewStore interface {
	// SaveReview inserts a new review record.
	SaveReview(ctx context.Context, record *entities.ReviewRecord) error

	// UpdateReviewDecision persists a decided record. It only succeeds when the
	// stored record is still pending; otherwise it returns an entities.ErrConflict error.
	UpdateReviewDecision(ctx context.Context, record *entities.ReviewRecord) error

	// FindReview returns a record by ID or an entities.ErrNotFound error.
	FindReview(ctx context.Context, id string) (*entities.ReviewRecord, error)

	// ListReviews returns records in insertion order.
	ListReviews(ctx context.Context, filter ReviewFilter) ([]entities.ReviewRecord, error)

	// CountReviewsByStatus returns the number of records per status.
	CountReviewsByStatus(ctx context.Context) (map[entities.ReviewStatus]int, error)
}

// AuditLog records actions taken on review records.
type AuditLog interface {
	// LogAudit appends an audit entry.
	LogAudit(ctx context.Context, entry *entities.AuditEntry) error

	// ListAudit returns entries for a review, or all entries when reviewID is empty, newest first.
	ListAudit(ctx context.Context, reviewID string, limit int) ([]entities.AuditEntry, error)
}

// MetricHistory records every approved change applied to a startup.
type MetricHistory interface {
	// SaveMetricVersion appends a version. Version numbers are assigned per (startup, field).
	SaveMetricVersion(ctx context.Context, version *entities.MetricVersion) error

	// ListMetricVersions returns versions for a startup, newest first.
	ListMetricVersions(ctx context.Context, startupID string) ([]entities.MetricVersion, error)
}

// TxManager runs a function inside a database transaction.
// Stores called with the context passed to fn take part in the transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RelationalDB is the full SQL-backed store.
type RelationalDB interface {
	StartupRegistry
	ReviewStore
	AuditLog
	MetricHistory
	TxManager

	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
