package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/mocks"
	"github.com/ersonp/diagnostics-tracker/internal/domain/services"
)

func newTestStartupHandler(db *mocks.RelationalDB) *StartupHandler {
	return NewStartupHandler(services.NewStartupService(db, db, db))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestStartupHandler_Import_JSONFile(t *testing.T) {
	db := mocks.NewRelationalDB()
	handler := newTestStartupHandler(db)

	path := writeFile(t, "startups.json", `[{"id": "everlywell", "name": "Everlywell", "metrics": {"totalFunding": 250000000}}]`)

	result, err := handler.Import(context.Background(), path, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Errors)
	require.Contains(t, db.Startups, "everlywell")
}

func TestStartupHandler_Import_CSVFile(t *testing.T) {
	db := mocks.NewRelationalDB()
	handler := newTestStartupHandler(db)

	path := writeFile(t, "startups.csv", "id,name,valuation\neverlywell,Everlywell,2900000000\n")

	result, err := handler.Import(context.Background(), path, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestStartupHandler_Import_ExplicitFormat(t *testing.T) {
	db := mocks.NewRelationalDB()
	handler := newTestStartupHandler(db)

	path := writeFile(t, "startups.txt", "- id: everlywell\n  name: Everlywell\n")

	result, err := handler.Import(context.Background(), path, ImportOptions{Format: "yaml"})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestStartupHandler_Import_SkipsExisting(t *testing.T) {
	db := mocks.NewRelationalDB(testStartups()...)
	handler := newTestStartupHandler(db)

	path := writeFile(t, "startups.json", `[{"id": "everlywell", "name": "Everlywell"}, {"id": "new", "name": "New Co"}]`)

	result, err := handler.Import(context.Background(), path, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestStartupHandler_Import_DryRun(t *testing.T) {
	db := mocks.NewRelationalDB()
	handler := newTestStartupHandler(db)

	path := writeFile(t, "startups.json", `[{"id": "everlywell", "name": "Everlywell"}, {"id": "", "name": "No ID"}]`)

	result, err := handler.Import(context.Background(), path, ImportOptions{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Empty(t, db.Startups)
}

func TestStartupHandler_Import_UnsupportedFormat(t *testing.T) {
	handler := newTestStartupHandler(mocks.NewRelationalDB())

	path := writeFile(t, "startups.xml", "<startups/>")

	_, err := handler.Import(context.Background(), path, ImportOptions{})

	require.Error(t, err)
	assert.True(t, entities.IsValidation(err))
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestStartupHandler_Import_MissingFile(t *testing.T) {
	handler := newTestStartupHandler(mocks.NewRelationalDB())

	_, err := handler.Import(context.Background(), filepath.Join(t.TempDir(), "none.json"), ImportOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening file")
}

func TestStartupHandler_Import_EmptyFile(t *testing.T) {
	handler := newTestStartupHandler(mocks.NewRelationalDB())

	path := writeFile(t, "startups.json", `[]`)

	result, err := handler.Import(context.Background(), path, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
}

func TestStartupHandler_Reads(t *testing.T) {
	db := mocks.NewRelationalDB(testStartups()...)
	handler := newTestStartupHandler(db)
	ctx := context.Background()

	list, err := handler.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	s, err := handler.Show(ctx, "everlywell")
	require.NoError(t, err)
	assert.Equal(t, "Everlywell", s.Name)

	_, err = handler.Show(ctx, "ghost")
	assert.True(t, entities.IsNotFound(err))

	stats, err := handler.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalStartups)
	assert.InDelta(t, 3_850_000_000, stats.AverageValuation, 1)

	history, err := handler.History(ctx, "everlywell")
	require.NoError(t, err)
	assert.Empty(t, history)
}
