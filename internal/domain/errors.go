package domain

import "errors"

var (
	// ErrEmbeddingNotConfigured signals that no embedding backend is wired.
	// Retrieval without one is a precondition failure, not a degraded state.
	ErrEmbeddingNotConfigured = errors.New("embedding backend not configured")
	// ErrGenerationNotConfigured signals that no generation backend is wired.
	ErrGenerationNotConfigured = errors.New("generation backend not configured")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
)
