package rewrite

import (
	"context"

	"github.com/kailas-cloud/finrag/internal/domain"
)

// Generator produces text from a system instruction and a user turn.
type Generator interface {
	Generate(ctx context.Context, system, user string) (domain.GenerationResult, error)
}
