package handlers

import (
	"context"

	"github.com/ersonp/diagnostics-tracker/internal/domain/services"
)

// RefreshHandler triggers refresh runs.
type RefreshHandler struct {
	service *services.RefreshService
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(service *services.RefreshService) *RefreshHandler {
	return &RefreshHandler{
		service: service,
	}
}

// Handle runs the pipeline once over every tracked startup.
func (h *RefreshHandler) Handle(ctx context.Context) (*services.RefreshResult, error) {
	return h.service.Run(ctx)
}
