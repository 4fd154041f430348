package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/mocks"
	"github.com/ersonp/diagnostics-tracker/internal/domain/services"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/relationaldb/sqlite"
)

func newTestRefreshHandler(t *testing.T, db *mocks.RelationalDB, source *mocks.NewsSource) *RefreshHandler {
	t.Helper()
	svc := services.NewRefreshService(db, source, services.NewRuleExtractor(),
		services.NewResolver(services.DefaultResolverOptions()), newTestQueue(t, db), db, nil,
		services.RefreshOptions{LookbackDays: 30}, zaptest.NewLogger(t).Sugar())
	return NewRefreshHandler(svc)
}

func TestRefreshHandler_Handle_EndToEnd(t *testing.T) {
	db := mocks.NewRelationalDB(entities.Startup{ID: "acme-health", Name: "Acme Health"})
	source := &mocks.NewsSource{Items: map[string][]entities.EvidenceItem{
		"acme-health": {{
			SourceURL:   "https://news.example/acme",
			Title:       "Acme Health raises $2 million",
			PublishedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		}},
	}}

	result, err := newTestRefreshHandler(t, db, source).Handle(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1, result.StartupsChecked)
	assert.Equal(t, 1, result.UpdatesFound)
	require.Len(t, result.Updates, 1)
	u := result.Updates[0]
	assert.Equal(t, entities.FieldTotalFunding, u.Field)
	assert.True(t, u.OldValue.IsNull())
	assert.True(t, u.NewValue.Equal(entities.NumberValue(2_000_000)))
	assert.Equal(t, entities.StatusPending, u.Status)
}

func TestRefreshHandler_Handle_NoStartups(t *testing.T) {
	result, err := newTestRefreshHandler(t, mocks.NewRelationalDB(), &mocks.NewsSource{}).Handle(t.Context())
	require.NoError(t, err)
	assert.Zero(t, result.StartupsChecked)
	assert.Empty(t, result.Updates)
}

func TestRefreshHandler_Handle_OverflowingCountOverSQLite(t *testing.T) {
	repo, err := sqlite.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.EnsureSchema(t.Context()))

	for _, s := range []entities.Startup{{ID: "a-labs", Name: "A Labs"}, {ID: "b-health", Name: "B Health"}} {
		require.NoError(t, repo.SaveStartup(t.Context(), &s))
	}

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	source := &mocks.NewsSource{Items: map[string][]entities.EvidenceItem{
		"a-labs":   {{SourceURL: "https://news.example/a", Title: "A Labs has " + strings.Repeat("9", 320) + " users", PublishedAt: day}},
		"b-health": {{SourceURL: "https://news.example/b", Title: "B Health raises $5 million", PublishedAt: day}},
	}}

	log := zaptest.NewLogger(t).Sugar()
	queue := services.NewReviewQueue(services.ReviewStores{
		Reviews:  repo,
		Registry: repo,
		History:  repo,
		Audit:    repo,
		Tx:       repo,
	}, log)
	svc := services.NewRefreshService(repo, source, services.NewRuleExtractor(),
		services.NewResolver(services.DefaultResolverOptions()), queue, repo, nil,
		services.RefreshOptions{LookbackDays: 30}, log)

	result, err := NewRefreshHandler(svc).Handle(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 2, result.StartupsChecked)
	require.Len(t, result.Updates, 1)
	assert.Equal(t, "b-health", result.Updates[0].StartupID)
	assert.True(t, result.Updates[0].NewValue.Equal(entities.NumberValue(5_000_000)))

	stored, err := repo.FindReview(t.Context(), result.Updates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusPending, stored.Status)
}
