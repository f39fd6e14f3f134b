// Package chat orchestrates the RAG pipeline:
// rewrite -> (expand) -> retrieve -> compose.
package chat

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/finrag/internal/domain"
)

const defaultTopK = 5

// Request is one chat invocation. LiteMode elides the expansion stage
// and its per-query embedding calls; it is a latency/cost control, not a
// correctness toggle.
type Request struct {
	Query    string
	History  []domain.ConversationTurn
	Locale   string
	Persona  string
	LiteMode bool
}

// Service sequences the pipeline stages. Stages run strictly one after
// another; each waits for its external model call.
type Service struct {
	gen      domain.Generator
	rewriter Rewriter
	expander Expander
	retrieve Retriever
	composer Composer
	topK     int
	logger   *zap.Logger
}

// New creates the pipeline orchestrator. gen is held only as the
// fail-fast precondition: a nil generator rejects every call before any
// model work.
func New(
	gen domain.Generator,
	rewriter Rewriter,
	expander Expander,
	retriever Retriever,
	composer Composer,
	logger *zap.Logger,
) *Service {
	return &Service{
		gen:      gen,
		rewriter: rewriter,
		expander: expander,
		retrieve: retriever,
		composer: composer,
		topK:     defaultTopK,
		logger:   logger,
	}
}

// WithTopK overrides how many passages ground the answer.
func (s *Service) WithTopK(k int) *Service {
	if k > 0 {
		s.topK = k
	}
	return s
}

// Chat runs the full pipeline and returns the answer with its sources in
// retriever rank order. Every failure short of a configuration error
// still produces a structurally valid result: the answer may be empty
// and the source list may be empty, but the call does not fail.
func (s *Service) Chat(ctx context.Context, req Request) (domain.ChatResult, error) {
	if s.gen == nil {
		return domain.ChatResult{}, domain.ErrGenerationNotConfigured
	}

	standalone := s.rewriter.Contextualize(ctx, req.Query, req.History)

	var queries []string
	if req.LiteMode {
		queries = []string{standalone}
	} else {
		queries = s.expander.Expand(ctx, standalone)
	}
	s.logger.Debug("Search queries resolved",
		zap.Strings("queries", queries),
		zap.Bool("lite_mode", req.LiteMode),
	)

	sources, err := s.retrieve.Retrieve(ctx, queries, s.topK, req.Persona)
	if err != nil {
		return domain.ChatResult{}, err
	}

	answer := s.composer.Compose(ctx, standalone, req.Query, sources, req.Persona, req.Locale)

	return domain.ChatResult{Answer: answer, Sources: sources}, nil
}
