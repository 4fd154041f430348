package services

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
)

// DefaultSimilarity is the score at or above which two evidence items are the same story.
const DefaultSimilarity = 0.95

// PendingEvidence holds kept evidence that has not been indexed yet.
type PendingEvidence []ports.IndexedEvidence

// SemanticEvidenceFilter drops evidence whose embedding is near an item
// already indexed for the same startup. Failures are logged and the input
// is returned unchanged.
type SemanticEvidenceFilter struct {
	embedder   ports.Embedder
	index      ports.EvidenceIndex
	similarity float32
	logger     *zap.SugaredLogger
}

// NewSemanticEvidenceFilter creates a filter. similarity <= 0 uses DefaultSimilarity.
func NewSemanticEvidenceFilter(embedder ports.Embedder, index ports.EvidenceIndex, similarity float64, logger *zap.SugaredLogger) *SemanticEvidenceFilter {
	if similarity <= 0 {
		similarity = DefaultSimilarity
	}
	return &SemanticEvidenceFilter{
		embedder:   embedder,
		index:      index,
		similarity: float32(similarity),
		logger:     logger,
	}
}

// Filter implements EvidenceFilter. Duplicates within the batch are also
// dropped. Kept items are returned as pending and are not indexed until Commit.
func (f *SemanticEvidenceFilter) Filter(ctx context.Context, startup entities.Startup, items []entities.EvidenceItem) ([]entities.EvidenceItem, PendingEvidence) {
	log := f.logger.With("startup_id", startup.ID)

	texts := make([]string, len(items))
	for i := range items {
		texts[i] = items[i].Text()
	}

	embeddings, err := f.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		log.Warnw("Embedding evidence failed, skipping dedup", "error", err)
		return items, nil
	}

	var kept []entities.EvidenceItem
	var indexed PendingEvidence
	for i := range items {
		//nolint:loopcall // nearest-neighbour search has no batch form
		match, err := f.index.Nearest(ctx, startup.ID, embeddings[i])
		if err != nil {
			log.Warnw("Evidence index search failed, skipping dedup", "error", err)
			return items, nil
		}
		if match != nil && match.Score >= f.similarity {
			log.Debugw("Dropping repeated evidence", "source", items[i].SourceURL, "duplicate_of", match.SourceURL)
			continue
		}
		if isNearAny(embeddings[i], indexed, f.similarity) {
			continue
		}
		kept = append(kept, items[i])
		indexed = append(indexed, ports.IndexedEvidence{StartupID: startup.ID, Item: items[i], Embedding: embeddings[i]})
	}

	log.Debugw("Filtered evidence", "evidence", len(items), "count", len(kept))
	return kept, indexed
}

// Commit implements EvidenceFilter. Index failures are logged; the items are
// offered again on the next run.
func (f *SemanticEvidenceFilter) Commit(ctx context.Context, pending PendingEvidence) {
	if len(pending) == 0 {
		return
	}
	if err := f.index.SaveBatch(ctx, pending); err != nil {
		f.logger.Warnw("Indexing evidence failed", "startup_id", pending[0].StartupID, "error", err)
	}
}

func isNearAny(v []float32, others PendingEvidence, threshold float32) bool {
	for _, o := range others {
		if cosineSimilarity(v, o.Embedding) >= threshold {
			return true
		}
	}
	return false
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either is empty or their lengths differ.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float32
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / float32(math.Sqrt(float64(na)*float64(nb)))
}
