// Package rewrite turns a raw user query plus recent conversation turns
// into a standalone search query.
package rewrite

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/finrag/internal/domain"
)

const defaultHistoryWindow = 4

const systemPrompt = `You are a helpful assistant that rewrites a user's question to be standalone, based on the conversation history.
If the history is not relevant, return the query as is.
Do NOT answer the question. Just return the rewording.`

// Service rewrites queries against conversation history.
type Service struct {
	gen    Generator
	window int
	logger *zap.Logger
}

// New creates a rewrite service.
func New(gen Generator, logger *zap.Logger) *Service {
	return &Service{gen: gen, window: defaultHistoryWindow, logger: logger}
}

// WithHistoryWindow overrides how many trailing turns are rendered into
// the rewrite prompt.
func (s *Service) WithHistoryWindow(n int) *Service {
	if n > 0 {
		s.window = n
	}
	return s
}

// Contextualize rewrites query into a standalone question using the last
// turns of history. Empty history returns the query unchanged with no
// model call. Any model failure or empty rewrite falls back to the
// original query; this method never fails the request.
func (s *Service) Contextualize(ctx context.Context, query string, history []domain.ConversationTurn) string {
	if len(history) == 0 {
		return query
	}

	recent := history
	if len(recent) > s.window {
		recent = recent[len(recent)-s.window:]
	}

	var hist strings.Builder
	for _, turn := range recent {
		hist.WriteString(turn.Role)
		hist.WriteString(": ")
		hist.WriteString(turn.Content)
		hist.WriteString("\n")
	}

	user := fmt.Sprintf(
		"Conversation History:\n%s\nUser's latest question: %s\n\nRewritten standalone question:",
		hist.String(), query,
	)

	result, err := s.gen.Generate(ctx, systemPrompt, user)
	if err != nil {
		s.logger.Warn("Query rewrite failed, using original query", zap.Error(err))
		return query
	}

	rewritten := strings.TrimSpace(result.Text)
	if rewritten == "" {
		return query
	}
	return rewritten
}
