package domain

import "context"

// Generator is the text generation contract. system may be empty; the
// provider then sends only the user turn.
type Generator interface {
	Generate(ctx context.Context, system, user string) (GenerationResult, error)
}

// GenerationResult carries generated text and token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
