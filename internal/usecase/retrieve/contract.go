package retrieve

import (
	"context"

	"github.com/kailas-cloud/finrag/internal/domain"
)

// CorpusReader selects eligible passages for a persona filter.
type CorpusReader interface {
	Eligible(persona string) []domain.Passage
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
