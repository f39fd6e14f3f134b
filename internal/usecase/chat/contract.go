package chat

import (
	"context"

	"github.com/kailas-cloud/finrag/internal/domain"
)

// Rewriter turns a raw query plus history into a standalone query.
type Rewriter interface {
	Contextualize(ctx context.Context, query string, history []domain.ConversationTurn) string
}

// Expander diversifies a standalone query into search queries.
type Expander interface {
	Expand(ctx context.Context, query string) []string
}

// Retriever ranks corpus passages against search queries.
type Retriever interface {
	Retrieve(ctx context.Context, queries []string, topK int, persona string) ([]domain.ScoredPassage, error)
}

// Composer produces the final grounded answer.
type Composer interface {
	Compose(ctx context.Context, question, original string, passages []domain.ScoredPassage, persona, locale string) string
}
