package ports

import (
	"context"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// LLMClient defines the interface for LLM operations.
type LLMClient interface {
	// ExtractChanges proposes metric changes for a startup from news text.
	ExtractChanges(ctx context.Context, startupName, text string) ([]ProposedChange, error)
}

// ProposedChange is a raw metric change suggested by an LLM.
// Field and Confidence are validated by the caller.
type ProposedChange struct {
	Field      string         `json:"field"`
	Value      entities.Value `json:"value"`
	Confidence string         `json:"confidence"`
}
