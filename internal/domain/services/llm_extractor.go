package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
)

const (
	// DefaultChunkSize is the default size for text chunks sent to the LLM.
	DefaultChunkSize = 2000
	// DefaultChunkOverlap is the default overlap between chunks.
	DefaultChunkOverlap = 200
)

// LLMExtractor asks an LLM to propose metric changes from evidence text.
type LLMExtractor struct {
	llm    ports.LLMClient
	logger *zap.SugaredLogger
}

// NewLLMExtractor creates an LLM-backed extractor.
func NewLLMExtractor(llm ports.LLMClient, logger *zap.SugaredLogger) *LLMExtractor {
	return &LLMExtractor{llm: llm, logger: logger}
}

// Extract implements Extractor. Proposals with unknown fields, unknown
// confidence levels or values of the wrong kind are skipped.
func (e *LLMExtractor) Extract(ctx context.Context, startup entities.Startup, items []entities.EvidenceItem) ([]entities.CandidateChange, error) {
	var out []entities.CandidateChange
	for _, item := range items {
		for _, chunk := range ChunkText(item.Title+"\n\n"+item.Snippet, DefaultChunkSize, DefaultChunkOverlap) {
			//nolint:loopcall // LLM has token limits, must process chunks separately
			proposals, err := e.llm.ExtractChanges(ctx, startup.Name, chunk)
			if err != nil {
				return nil, fmt.Errorf("extracting changes from %s: %w", item.SourceURL, err)
			}

			for _, p := range proposals {
				c, ok := e.toCandidate(startup, item, p)
				if !ok {
					continue
				}
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (e *LLMExtractor) toCandidate(startup entities.Startup, item entities.EvidenceItem, p ports.ProposedChange) (entities.CandidateChange, bool) {
	field, err := entities.ParseField(p.Field)
	if err != nil {
		e.logger.Debugw("Skipping proposal", "startup_id", startup.ID, "field", p.Field, "error", err)
		return entities.CandidateChange{}, false
	}

	confidence, err := entities.ParseConfidence(strings.ToLower(p.Confidence))
	if err != nil {
		confidence = entities.ConfidenceLow
	}

	n, isNum := p.Value.Number()
	if field.IsNumeric() && !isNum {
		e.logger.Debugw("Skipping proposal with non-numeric value", "startup_id", startup.ID, "field", field)
		return entities.CandidateChange{}, false
	}
	if _, ok := finiteFloat(n); isNum && !ok {
		e.logger.Debugw("Skipping proposal with non-finite value", "startup_id", startup.ID, "field", field)
		return entities.CandidateChange{}, false
	}
	if _, isAcq := p.Value.Acquisition(); field == entities.FieldAcquisition && !isAcq {
		e.logger.Debugw("Skipping proposal with non-acquisition value", "startup_id", startup.ID, "field", field)
		return entities.CandidateChange{}, false
	}

	old := startup.CurrentValue(field)
	if field == entities.FieldAcquisition {
		old = entities.NullValue()
	}

	return entities.CandidateChange{
		StartupID:  startup.ID,
		Field:      field,
		OldValue:   old,
		NewValue:   p.Value,
		SourceURL:  item.SourceURL,
		Confidence: confidence,
		ObservedAt: item.PublishedAt,
	}, true
}

// ChunkText splits text into chunks of approximately chunkSize characters.
// It tries to split on paragraph boundaries.
func ChunkText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	paragraphs := strings.Split(text, "\n\n")

	var currentChunk strings.Builder
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if currentChunk.Len()+len(para)+2 > chunkSize && currentChunk.Len() > 0 {
			chunks = append(chunks, currentChunk.String())

			overlapText := getOverlapText(currentChunk.String(), overlap)
			currentChunk.Reset()
			currentChunk.WriteString(overlapText)
		}

		if currentChunk.Len() > 0 {
			currentChunk.WriteString("\n\n")
		}
		currentChunk.WriteString(para)
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, currentChunk.String())
	}

	if len(chunks) == 0 && len(text) > 0 {
		chunks = append(chunks, text)
	}

	return chunks
}

// getOverlapText returns at most the last n bytes of text for overlap,
// starting on a rune boundary.
func getOverlapText(text string, n int) string {
	if len(text) <= n {
		return text
	}
	start := len(text) - n
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	return text[start:]
}
