// Package expand diversifies a standalone query into a small set of
// search queries for better retrieval recall.
package expand

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// maxQueries caps the expansion at the original plus three alternates.
const maxQueries = 4

const systemPrompt = `You are a search query optimizer. Generate 3 different search queries based on the user's input.
The queries should cover different aspects or terms related to the user's intent to find the best financial documents.
Return ONLY the 3 queries, separated by newlines. No numbering.`

// Service expands queries via the generation model. Costs one generation
// call per invocation plus one embedding call per resulting query, which
// is why the orchestrator skips it in lite mode.
type Service struct {
	gen    Generator
	logger *zap.Logger
}

// New creates an expand service.
func New(gen Generator, logger *zap.Logger) *Service {
	return &Service{gen: gen, logger: logger}
}

// Expand returns the original query plus up to three model-generated
// alternates, deduplicated by exact text equality, at most 4 entries.
// The original query is always first. Model failure degrades to the
// single-element result.
func (s *Service) Expand(ctx context.Context, query string) []string {
	result, err := s.gen.Generate(ctx, systemPrompt, "User input: "+query)
	if err != nil {
		s.logger.Warn("Query expansion failed, searching with original query only", zap.Error(err))
		return []string{query}
	}

	queries := []string{query}
	seen := map[string]struct{}{query: {}}

	for _, line := range strings.Split(result.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		queries = append(queries, line)
		if len(queries) == maxQueries {
			break
		}
	}

	return queries
}
