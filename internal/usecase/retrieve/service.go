// Package retrieve ranks corpus passages against a set of search queries
// by embedding similarity.
package retrieve

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/finrag/internal/domain"
)

// Service scores eligible passages per query and merges results across
// queries with first-query-wins deduplication: once a passage id is
// scored under an earlier query, later queries never update its score.
// The first query is the rewritten user question, i.e. the most literal
// intent match, so its scores take precedence over expansion alternates.
type Service struct {
	corpus CorpusReader
	embed  Embedder
	logger *zap.Logger
}

// New creates a retrieve service. embed may be nil when no embedding
// backend is configured; Retrieve then fails with a configuration error.
func New(corpus CorpusReader, embed Embedder, logger *zap.Logger) *Service {
	return &Service{corpus: corpus, embed: embed, logger: logger}
}

// Retrieve embeds each query in order, scores every eligible passage not
// yet seen in this call, and returns the topK passages by score
// descending. A failed embedding skips its query; the remaining queries
// still contribute. Zero usable queries yield an empty result, not an
// error.
func (s *Service) Retrieve(
	ctx context.Context, queries []string, topK int, persona string,
) ([]domain.ScoredPassage, error) {
	if s.embed == nil {
		return nil, domain.ErrEmbeddingNotConfigured
	}

	eligible := s.corpus.Eligible(persona)

	scored := make([]domain.ScoredPassage, 0, len(eligible))
	seen := make(map[string]struct{}, len(eligible))

	for _, query := range queries {
		result, err := s.embed.Embed(ctx, query)
		if err != nil {
			s.logger.Warn("Failed to embed search query, skipping",
				zap.String("query", query),
				zap.Error(err),
			)
			continue
		}

		for _, p := range eligible {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			score := domain.Cosine(result.Embedding, p.Embedding)
			scored = append(scored, p.Scored(score))
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}
