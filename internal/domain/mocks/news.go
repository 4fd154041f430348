package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// NewsSource is a mock implementation of ports.NewsSource keyed by startup ID.
type NewsSource struct {
	mu sync.Mutex

	Items map[string][]entities.EvidenceItem
	Errs  map[string]error

	// OnSearch runs before each search, e.g. to cancel a context mid-run.
	OnSearch func(startup entities.Startup)

	// Call tracking
	Searched     []string
	LastDaysBack int
}

// Search returns the configured items or error for the startup.
func (m *NewsSource) Search(_ context.Context, startup entities.Startup, daysBack int) ([]entities.EvidenceItem, error) {
	m.mu.Lock()
	m.Searched = append(m.Searched, startup.ID)
	m.LastDaysBack = daysBack
	hook := m.OnSearch
	m.mu.Unlock()

	if hook != nil {
		hook(startup)
	}
	if err := m.Errs[startup.ID]; err != nil {
		return nil, err
	}
	return m.Items[startup.ID], nil
}
