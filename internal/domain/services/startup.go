package services

import (
	"context"
	"fmt"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/parsers"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun    bool // Validate without saving
	Overwrite bool // Replace startups that already exist
}

// ImportError represents an error for a specific startup during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	ID      string // Startup ID, if present
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []ImportError
}

// Stats are the aggregate figures shown on the dashboard.
type Stats struct {
	TotalStartups    int     `json:"totalStartups"`
	TotalFunding     float64 `json:"totalFunding"`
	TotalUsers       float64 `json:"totalUsers"`
	AverageValuation float64 `json:"averageValuation"`
	Acquired         int     `json:"acquired"`
	PendingReviews   int     `json:"pendingReviews"`
}

// StartupService reads and imports tracked startups.
type StartupService struct {
	registry ports.StartupRegistry
	history  ports.MetricHistory
	reviews  ports.ReviewStore
}

// NewStartupService creates a new startup service.
func NewStartupService(registry ports.StartupRegistry, history ports.MetricHistory, reviews ports.ReviewStore) *StartupService {
	return &StartupService{
		registry: registry,
		history:  history,
		reviews:  reviews,
	}
}

// List returns every tracked startup.
func (s *StartupService) List(ctx context.Context) ([]entities.Startup, error) {
	startups, err := s.registry.ListStartups(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing startups: %w", err)
	}
	return startups, nil
}

// Get returns a startup by ID.
func (s *StartupService) Get(ctx context.Context, id string) (*entities.Startup, error) {
	startup, err := s.registry.FindStartup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding startup: %w", err)
	}
	return startup, nil
}

// History returns the applied metric versions of a startup, newest first.
func (s *StartupService) History(ctx context.Context, id string) ([]entities.MetricVersion, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	versions, err := s.history.ListMetricVersions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing metric versions: %w", err)
	}
	return versions, nil
}

// Stats computes dashboard aggregates. The average valuation covers only
// startups with a known valuation.
func (s *StartupService) Stats(ctx context.Context) (*Stats, error) {
	startups, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalStartups: len(startups)}
	var valued int
	var valuationSum float64
	for i := range startups {
		m := startups[i].Metrics
		if m.TotalFunding != nil {
			stats.TotalFunding += *m.TotalFunding
		}
		if m.EstimatedUsers != nil {
			stats.TotalUsers += *m.EstimatedUsers
		}
		if m.Valuation != nil {
			valuationSum += *m.Valuation
			valued++
		}
		if m.Acquisition != nil {
			stats.Acquired++
		}
	}
	if valued > 0 {
		stats.AverageValuation = valuationSum / float64(valued)
	}

	counts, err := s.reviews.CountReviewsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting reviews: %w", err)
	}
	stats.PendingReviews = counts[entities.StatusPending]

	return stats, nil
}

// Import validates and saves raw startups.
func (s *StartupService) Import(ctx context.Context, raw []parsers.RawStartup, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}
	seen := make(map[string]bool, len(raw))

	for i := range raw {
		r := &raw[i]
		line := r.LineNum
		if line == 0 {
			line = i + 1
		}

		if err := r.Startup.Validate(); err != nil {
			result.Errors = append(result.Errors, ImportError{Line: line, ID: r.ID, Message: err.Error()})
			continue
		}
		if seen[r.ID] {
			result.Errors = append(result.Errors, ImportError{Line: line, ID: r.ID, Message: fmt.Sprintf("duplicate id %q", r.ID)})
			continue
		}
		seen[r.ID] = true

		if !opts.Overwrite {
			//nolint:loopcall // import files are small and existence is checked per row
			_, err := s.registry.FindStartup(ctx, r.ID)
			if err == nil {
				result.Skipped++
				continue
			}
			if !entities.IsNotFound(err) {
				return nil, fmt.Errorf("checking startup %s: %w", r.ID, err)
			}
		}

		if opts.DryRun {
			result.Imported++
			continue
		}

		startup := r.Startup
		if startup.LastUpdated.IsZero() {
			startup.LastUpdated = timeNow().UTC()
		}
		//nolint:loopcall // rows are saved individually to report per-row results
		if err := s.registry.SaveStartup(ctx, &startup); err != nil {
			return nil, fmt.Errorf("saving startup %s: %w", r.ID, err)
		}
		result.Imported++
	}

	return result, nil
}
