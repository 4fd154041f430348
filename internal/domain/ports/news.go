// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// NewsSource acquires recent evidence about a startup.
type NewsSource interface {
	// Search returns news items about the startup published in the last daysBack days.
	// An empty result is not an error.
	Search(ctx context.Context, startup entities.Startup, daysBack int) ([]entities.EvidenceItem, error)
}
