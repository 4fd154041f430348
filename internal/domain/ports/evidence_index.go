package ports

import (
	"context"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// EvidenceMatch is the nearest indexed evidence item for a query embedding.
type EvidenceMatch struct {
	SourceURL string
	Score     float32
}

// IndexedEvidence is an evidence item with its embedding.
type IndexedEvidence struct {
	StartupID string
	Item      entities.EvidenceItem
	Embedding []float32
}

// EvidenceIndex stores embeddings of evidence already seen, per startup.
type EvidenceIndex interface {
	// Nearest returns the closest indexed item for the startup, or nil when the index has none.
	Nearest(ctx context.Context, startupID string, embedding []float32) (*EvidenceMatch, error)

	// SaveBatch indexes evidence items.
	SaveBatch(ctx context.Context, items []IndexedEvidence) error
}

// EvidenceCollection manages the lifecycle of the index's backing collection.
type EvidenceCollection interface {
	// EnsureCollection creates the collection and its startup_id index if missing.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// DeleteCollection drops every indexed item.
	DeleteCollection(ctx context.Context) error
}

// Embedder turns evidence text into vectors. Output order matches input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
