package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/services"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/parsers"
)

// StartupHandler handles reading and importing tracked startups.
type StartupHandler struct {
	service *services.StartupService
}

// NewStartupHandler creates a new startup handler.
func NewStartupHandler(service *services.StartupService) *StartupHandler {
	return &StartupHandler{
		service: service,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format    string // "json", "yaml", "csv", or "auto"
	DryRun    bool   // Validate without saving
	Overwrite bool   // Replace startups that already exist
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []services.ImportError
}

// Import loads startups from a file.
func (h *StartupHandler) Import(ctx context.Context, filePath string, opts ImportOptions) (*ImportResult, error) {
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, entities.Validationf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	raw, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	if len(raw) == 0 {
		return &ImportResult{}, nil
	}

	serviceResult, err := h.service.Import(ctx, raw, services.ImportOptions{
		DryRun:    opts.DryRun,
		Overwrite: opts.Overwrite,
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Imported: serviceResult.Imported,
		Skipped:  serviceResult.Skipped,
		Errors:   serviceResult.Errors,
	}, nil
}

// List returns every tracked startup.
func (h *StartupHandler) List(ctx context.Context) ([]entities.Startup, error) {
	return h.service.List(ctx)
}

// Show returns one startup.
func (h *StartupHandler) Show(ctx context.Context, id string) (*entities.Startup, error) {
	return h.service.Get(ctx, id)
}

// History returns the approved changes applied to a startup, newest first.
func (h *StartupHandler) History(ctx context.Context, id string) ([]entities.MetricVersion, error) {
	return h.service.History(ctx, id)
}

// Stats returns the dashboard figures.
func (h *StartupHandler) Stats(ctx context.Context) (*services.Stats, error) {
	return h.service.Stats(ctx)
}
