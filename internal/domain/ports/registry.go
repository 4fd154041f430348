package ports

import (
	"context"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// StartupRegistry holds the canonical startup records.
type StartupRegistry interface {
	// ListStartups returns every tracked startup ordered by name.
	ListStartups(ctx context.Context) ([]entities.Startup, error)

	// FindStartup returns a startup by ID or an entities.ErrNotFound error.
	FindStartup(ctx context.Context, id string) (*entities.Startup, error)

	// CurrentValue returns the snapshot value of one field.
	CurrentValue(ctx context.Context, startupID string, field entities.Field) (entities.Value, error)

	// ApplyApprovedChange writes an approved value into the startup record.
	ApplyApprovedChange(ctx context.Context, startupID string, field entities.Field, value entities.Value) error

	// SaveStartup inserts or replaces a startup.
	SaveStartup(ctx context.Context, startup *entities.Startup) error
}
