package handlers

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/mocks"
	"github.com/ersonp/diagnostics-tracker/internal/domain/services"
)

func fptr(f float64) *float64 { return &f }

func testStartups() []entities.Startup {
	return []entities.Startup{
		{
			ID:   "everlywell",
			Name: "Everlywell",
			Metrics: entities.StartupMetrics{
				TotalFunding:   fptr(250_000_000),
				Valuation:      fptr(2_900_000_000),
				EstimatedUsers: fptr(1_000_000),
			},
		},
		{ID: "cerebral", Name: "Cerebral", Metrics: entities.StartupMetrics{Valuation: fptr(4_800_000_000)}},
	}
}

func newTestQueue(t *testing.T, db *mocks.RelationalDB) *services.ReviewQueue {
	t.Helper()
	return services.NewReviewQueue(services.ReviewStores{
		Reviews:  db,
		Registry: db,
		History:  db,
		Audit:    db,
		Tx:       db,
	}, zaptest.NewLogger(t).Sugar())
}

func fundingChange(newValue float64) entities.CandidateChange {
	return entities.CandidateChange{
		StartupID:  "everlywell",
		Field:      entities.FieldTotalFunding,
		OldValue:   entities.NumberValue(250_000_000),
		NewValue:   entities.NumberValue(newValue),
		SourceURL:  "https://news.example/a",
		Confidence: entities.ConfidenceHigh,
	}
}
