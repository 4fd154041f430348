package mocks

import "context"

// Embedder is a mock implementation of ports.Embedder.
// Vectors maps an input text to its embedding; unknown texts get EmbeddingResult.
type Embedder struct {
	Vectors         map[string][]float32
	EmbeddingResult []float32
	Err             error

	EmbedBatchCallCount int
}

func (m *Embedder) vector(text string) []float32 {
	if v, ok := m.Vectors[text]; ok {
		return v
	}
	return m.EmbeddingResult
}

// EmbedBatch returns embeddings for multiple texts.
func (m *Embedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.EmbedBatchCallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.vector(texts[i])
	}
	return result, nil
}
