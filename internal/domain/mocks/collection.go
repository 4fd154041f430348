package mocks

import (
	"context"
	"math"

	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
)

// EvidenceIndex is an in-memory mock of ports.EvidenceIndex and
// ports.EvidenceCollection scoring by cosine similarity.
type EvidenceIndex struct {
	Items []ports.IndexedEvidence

	NearestErr error
	SaveErr    error
	EnsureErr  error

	// Call tracking
	NearestCallCount          int
	SaveBatchCallCount        int
	EnsureCollectionCallCount int
	DeleteCollectionCallCount int
}

// EnsureCollection returns the configured error.
func (m *EvidenceIndex) EnsureCollection(_ context.Context, _ uint64) error {
	m.EnsureCollectionCallCount++
	return m.EnsureErr
}

// DeleteCollection clears the index.
func (m *EvidenceIndex) DeleteCollection(_ context.Context) error {
	m.DeleteCollectionCallCount++
	m.Items = nil
	return nil
}

// Nearest returns the most similar indexed item for the startup.
func (m *EvidenceIndex) Nearest(_ context.Context, startupID string, embedding []float32) (*ports.EvidenceMatch, error) {
	m.NearestCallCount++
	if m.NearestErr != nil {
		return nil, m.NearestErr
	}
	var best *ports.EvidenceMatch
	for _, it := range m.Items {
		if it.StartupID != startupID {
			continue
		}
		score := cosine(embedding, it.Embedding)
		if best == nil || score > best.Score {
			best = &ports.EvidenceMatch{SourceURL: it.Item.SourceURL, Score: score}
		}
	}
	return best, nil
}

// SaveBatch indexes items.
func (m *EvidenceIndex) SaveBatch(_ context.Context, items []ports.IndexedEvidence) error {
	m.SaveBatchCallCount++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Items = append(m.Items, items...)
	return nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
