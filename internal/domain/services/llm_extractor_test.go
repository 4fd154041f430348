package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/mocks"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
)

func TestLLMExtractor_Extract(t *testing.T) {
	llm := &mocks.LLMClient{
		Changes: []ports.ProposedChange{
			{Field: "valuation", Value: entities.NumberValue(3e9), Confidence: "HIGH"},
			{Field: "revenue", Value: entities.NumberValue(1e6), Confidence: "high"},
			{Field: "totalFunding", Value: entities.AcquisitionValue(entities.Acquisition{Acquirer: "X"}), Confidence: "high"},
			{Field: "employeeCount", Value: entities.NumberValue(450), Confidence: "sure"},
			{Field: "acquisition", Value: entities.AcquisitionValue(entities.Acquisition{Acquirer: "Labcorp", Date: "2024-05-01"}), Confidence: "medium"},
		},
	}
	ex := NewLLMExtractor(llm, zaptest.NewLogger(t).Sugar())

	startup := testStartup()
	published := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	items := []entities.EvidenceItem{{SourceURL: "https://news/1", Title: "Everlywell news", Snippet: "details", PublishedAt: published}}

	got, err := ex.Extract(context.Background(), startup, items)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, entities.FieldValuation, got[0].Field)
	assert.Equal(t, entities.ConfidenceHigh, got[0].Confidence)
	assert.True(t, got[0].OldValue.Equal(startup.CurrentValue(entities.FieldValuation)))
	assert.Equal(t, "https://news/1", got[0].SourceURL)
	assert.Equal(t, published, got[0].ObservedAt)

	assert.Equal(t, entities.FieldEmployeeCount, got[1].Field)
	assert.Equal(t, entities.ConfidenceLow, got[1].Confidence, "unknown confidence degrades to low")

	assert.Equal(t, entities.FieldAcquisition, got[2].Field)

	assert.Equal(t, "Everlywell", llm.LastStartupName)
	assert.Contains(t, llm.LastText, "Everlywell news")
}

func TestLLMExtractor_Extract_AcquisitionHasNoOldValue(t *testing.T) {
	llm := &mocks.LLMClient{Changes: []ports.ProposedChange{
		{Field: "acquisition", Value: entities.AcquisitionValue(entities.Acquisition{Acquirer: "Quest", Date: "2024-06-01"}), Confidence: "high"},
	}}
	ex := NewLLMExtractor(llm, zaptest.NewLogger(t).Sugar())

	startup := testStartup()
	startup.Metrics.Acquisition = &entities.Acquisition{Acquirer: "Labcorp", Date: "2023-01-01"}

	got, err := ex.Extract(context.Background(), startup, []entities.EvidenceItem{{SourceURL: "u", Title: "t"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].OldValue.IsNull(), "got %s", got[0].OldValue)
}

func TestLLMExtractor_Extract_SkipsNonFiniteNumbers(t *testing.T) {
	llm := &mocks.LLMClient{Changes: []ports.ProposedChange{
		{Field: "estimatedUsers", Value: entities.NumberValue(math.Inf(1)), Confidence: "high"},
		{Field: "valuation", Value: entities.NumberValue(math.NaN()), Confidence: "high"},
		{Field: "totalFunding", Value: entities.NumberValue(3e8), Confidence: "high"},
	}}
	ex := NewLLMExtractor(llm, zaptest.NewLogger(t).Sugar())

	got, err := ex.Extract(context.Background(), testStartup(), []entities.EvidenceItem{{SourceURL: "u", Title: "t"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entities.FieldTotalFunding, got[0].Field)
}

func TestLLMExtractor_Extract_ClientError(t *testing.T) {
	llm := &mocks.LLMClient{ExtractErr: errors.New("rate limited")}
	ex := NewLLMExtractor(llm, zaptest.NewLogger(t).Sugar())

	_, err := ex.Extract(context.Background(), testStartup(), []entities.EvidenceItem{{SourceURL: "u", Title: "t"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestLLMExtractor_Extract_LongSnippetIsChunked(t *testing.T) {
	llm := &mocks.LLMClient{}
	ex := NewLLMExtractor(llm, zaptest.NewLogger(t).Sugar())

	para := strings.Repeat("word ", 300)
	item := entities.EvidenceItem{SourceURL: "u", Title: "title", Snippet: para + "\n\n" + para}

	_, err := ex.Extract(context.Background(), testStartup(), []entities.EvidenceItem{item})
	require.NoError(t, err)
	assert.Equal(t, 2, llm.ExtractCallCount)
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		wantCount int
	}{
		{name: "fits in one chunk", text: "Everlywell raises $2 million.", chunkSize: 100, overlap: 10, wantCount: 1},
		{name: "empty text", text: "", chunkSize: 100, overlap: 10, wantCount: 1},
		{name: "splits on paragraphs", text: "Funding news.\n\nValuation news.\n\nUser growth.\n\nHiring update.", chunkSize: 30, overlap: 5, wantCount: 3},
		{name: "whitespace only", text: "   \n\n   \n\n   ", chunkSize: 5, overlap: 1, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkText(tt.text, tt.chunkSize, tt.overlap)
			assert.Len(t, chunks, tt.wantCount)
			for _, c := range chunks {
				if tt.text != "" {
					assert.NotEmpty(t, c)
				}
			}
		})
	}
}

func TestGetOverlapText(t *testing.T) {
	assert.Equal(t, "abc", getOverlapText("abc", 5))
	assert.Equal(t, "def", getOverlapText("abcdef", 3))
	assert.Equal(t, "", getOverlapText("abcdef", 0))

	t.Run("multibyte boundary", func(t *testing.T) {
		text := "prix: 5€ à Zürich"
		for n := 0; n <= len(text); n++ {
			got := getOverlapText(text, n)
			assert.True(t, utf8.ValidString(got), "n=%d got %q", n, got)
			assert.LessOrEqual(t, len(got), n)
			assert.True(t, strings.HasSuffix(text, got))
		}
		assert.Equal(t, "rich", getOverlapText(text, 4))
		assert.Equal(t, "Zürich", getOverlapText(text, 7))
		assert.Equal(t, "ürich", getOverlapText(text, 6))
		assert.Equal(t, "rich", getOverlapText(text, 5), "a split rune is skipped")
	})
}
