package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
)

var _ ports.NewsSource = (*FixtureSource)(nil)

// FixtureSource serves evidence from a JSON file keyed by startup ID:
//
//	{"everlywell": [{"url": "...", "title": "...", "description": "...", "publishedAt": "..."}]}
//
// It is used for offline runs and demos. daysBack is ignored.
type FixtureSource struct {
	items map[string][]entities.EvidenceItem
}

// NewFixtureSource loads a fixture file.
func NewFixtureSource(path string) (*FixtureSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}

	var items map[string][]entities.EvidenceItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, entities.Validationf("parsing fixture %s: %v", path, err)
	}

	return &FixtureSource{items: items}, nil
}

// Search returns the fixture items for the startup.
func (f *FixtureSource) Search(ctx context.Context, startup entities.Startup, _ int) ([]entities.EvidenceItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := f.items[startup.ID]
	out := make([]entities.EvidenceItem, len(items))
	copy(out, items)
	return out, nil
}
