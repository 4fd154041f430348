// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/config"
	embedder "github.com/ersonp/diagnostics-tracker/internal/infrastructure/embedder/openai"
)

// InitHandler handles tracker initialization.
type InitHandler struct {
	collections ports.EvidenceCollection
}

// NewInitHandler creates a new init handler. collections may be nil
// when semantic evidence dedup is not used.
func NewInitHandler(collections ports.EvidenceCollection) *InitHandler {
	return &InitHandler{
		collections: collections,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath     string
	DatabasePath   string
	CollectionName string
}

// Handle writes the default configuration and prepares the evidence collection.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, errors.WithHint(
			entities.Conflictf("tracker already initialized in %s", basePath),
			"edit "+config.ConfigFilePath(basePath)+" instead")
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	result := &InitResult{
		ConfigPath:   config.ConfigFilePath(basePath),
		DatabasePath: cfg.SQLitePath(basePath),
	}

	if h.collections != nil {
		if err := h.collections.EnsureCollection(ctx, embedder.VectorSize); err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
		result.CollectionName = cfg.Qdrant.Collection
	}

	return result, nil
}
