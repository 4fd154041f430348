package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/mocks"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
)

func TestSemanticEvidenceFilter_DropsSeenStories(t *testing.T) {
	fresh := evidence("https://n/new", "A Labs launches new test", time.Now())
	repeat := evidence("https://n/repeat", "A Labs raises $20 million", time.Now())

	embedder := &mocks.Embedder{Vectors: map[string][]float32{
		fresh.Text():  {0, 1, 0},
		repeat.Text(): {1, 0.01, 0},
	}}
	index := &mocks.EvidenceIndex{Items: []ports.IndexedEvidence{
		{StartupID: "a-labs", Item: evidence("https://n/original", "orig", time.Now()), Embedding: []float32{1, 0, 0}},
		{StartupID: "other", Item: evidence("https://n/other", "other", time.Now()), Embedding: []float32{0, 1, 0}},
	}}

	f := NewSemanticEvidenceFilter(embedder, index, 0, zaptest.NewLogger(t).Sugar())
	kept, pending := f.Filter(t.Context(), entities.Startup{ID: "a-labs"}, []entities.EvidenceItem{fresh, repeat})

	require.Len(t, kept, 1)
	assert.Equal(t, "https://n/new", kept[0].SourceURL, "matches for other startups are ignored")
	require.Len(t, pending, 1)
	assert.Len(t, index.Items, 2, "nothing is indexed before commit")
	assert.Zero(t, index.SaveBatchCallCount)

	f.Commit(t.Context(), pending)
	require.Len(t, index.Items, 3)
	assert.Equal(t, "https://n/new", index.Items[2].Item.SourceURL)
}

func TestSemanticEvidenceFilter_UncommittedEvidenceIsOfferedAgain(t *testing.T) {
	item := evidence("https://n/1", "A Labs raises $20 million", time.Now())
	embedder := &mocks.Embedder{EmbeddingResult: []float32{1, 0}}
	index := &mocks.EvidenceIndex{}
	f := NewSemanticEvidenceFilter(embedder, index, 0.95, zaptest.NewLogger(t).Sugar())
	startup := entities.Startup{ID: "a-labs"}

	kept, _ := f.Filter(t.Context(), startup, []entities.EvidenceItem{item})
	require.Len(t, kept, 1)

	kept, pending := f.Filter(t.Context(), startup, []entities.EvidenceItem{item})
	require.Len(t, kept, 1)

	f.Commit(t.Context(), pending)
	kept, pending = f.Filter(t.Context(), startup, []entities.EvidenceItem{item})
	assert.Empty(t, kept)
	assert.Empty(t, pending)

	f.Commit(t.Context(), nil)
	assert.Equal(t, 1, index.SaveBatchCallCount)
}

func TestSemanticEvidenceFilter_FailuresReturnInput(t *testing.T) {
	items := []entities.EvidenceItem{evidence("a", "x", time.Now()), evidence("b", "y", time.Now())}
	log := zaptest.NewLogger(t).Sugar()

	t.Run("embedder", func(t *testing.T) {
		f := NewSemanticEvidenceFilter(&mocks.Embedder{Err: errors.New("quota")}, &mocks.EvidenceIndex{}, 0.9, log)
		kept, pending := f.Filter(t.Context(), entities.Startup{ID: "s"}, items)
		assert.Equal(t, items, kept)
		assert.Nil(t, pending)
	})

	t.Run("index", func(t *testing.T) {
		embedder := &mocks.Embedder{EmbeddingResult: []float32{1}}
		f := NewSemanticEvidenceFilter(embedder, &mocks.EvidenceIndex{NearestErr: errors.New("grpc unavailable")}, 0.9, log)
		kept, pending := f.Filter(t.Context(), entities.Startup{ID: "s"}, items)
		assert.Equal(t, items, kept)
		assert.Nil(t, pending)
	})

	t.Run("commit failure is logged", func(t *testing.T) {
		embedder := &mocks.Embedder{Vectors: map[string][]float32{items[0].Text(): {1, 0}, items[1].Text(): {0, 1}}}
		index := &mocks.EvidenceIndex{SaveErr: errors.New("read only")}
		f := NewSemanticEvidenceFilter(embedder, index, 0.9, log)
		kept, pending := f.Filter(t.Context(), entities.Startup{ID: "s"}, items)
		assert.Len(t, kept, 2)
		f.Commit(t.Context(), pending)
		assert.Equal(t, 1, index.SaveBatchCallCount)
		assert.Empty(t, index.Items)
	})
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, cosineSimilarity(nil, nil))
}
