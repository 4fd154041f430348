// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
)

// LLMClient is a mock implementation of ports.LLMClient.
type LLMClient struct {
	// ExtractChanges return values
	Changes    []ports.ProposedChange
	ExtractErr error

	// Call tracking
	ExtractCallCount int
	LastStartupName  string
	LastText         string
}

// ExtractChanges returns the configured changes or error.
func (m *LLMClient) ExtractChanges(_ context.Context, startupName, text string) ([]ports.ProposedChange, error) {
	m.ExtractCallCount++
	m.LastStartupName = startupName
	m.LastText = text
	if m.ExtractErr != nil {
		return nil, m.ExtractErr
	}
	return m.Changes, nil
}
