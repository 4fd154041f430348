package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/mocks"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/config"
)

func TestNewInitHandler(t *testing.T) {
	index := &mocks.EvidenceIndex{}

	handler := NewInitHandler(index)

	require.NotNil(t, handler)
	assert.Equal(t, index, handler.collections)
}

func TestInitHandler_Handle_Success(t *testing.T) {
	tmpDir := t.TempDir()

	index := &mocks.EvidenceIndex{}

	handler := NewInitHandler(index)

	result, err := handler.Handle(t.Context(), tmpDir)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.ConfigPath, "config.yaml")
	assert.Contains(t, result.DatabasePath, "tracker.db")
	assert.Equal(t, "tracker_evidence", result.CollectionName)
	assert.Equal(t, 1, index.EnsureCollectionCallCount)

	assert.True(t, config.Exists(tmpDir))
}

func TestInitHandler_Handle_WithoutCollection(t *testing.T) {
	tmpDir := t.TempDir()

	result, err := NewInitHandler(nil).Handle(t.Context(), tmpDir)

	require.NoError(t, err)
	assert.Empty(t, result.CollectionName)
	assert.True(t, config.Exists(tmpDir))
}

func TestInitHandler_Handle_AlreadyInitialized(t *testing.T) {
	tmpDir := t.TempDir()

	err := config.WriteDefault(tmpDir)
	require.NoError(t, err)

	handler := NewInitHandler(nil)

	_, err = handler.Handle(t.Context(), tmpDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
	assert.True(t, entities.IsConflict(err))
}

func TestInitHandler_Handle_CollectionError(t *testing.T) {
	tmpDir := t.TempDir()

	index := &mocks.EvidenceIndex{
		EnsureErr: errors.New("connection failed"),
	}

	handler := NewInitHandler(index)

	_, err := handler.Handle(t.Context(), tmpDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating collection")
	assert.Contains(t, err.Error(), "connection failed")
}
