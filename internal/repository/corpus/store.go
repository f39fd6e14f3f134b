// Package corpus holds the immutable in-memory passage store loaded from
// the static embeddings artifact produced by the ingest job.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kailas-cloud/finrag/internal/domain"
)

// Store is a read-only passage collection. Safe for concurrent use:
// nothing mutates it after Load.
type Store struct {
	passages []domain.Passage
}

// Load reads the embeddings artifact once at startup. A missing artifact
// yields an empty store, not an error: the service must still start and
// answer with no grounding. A present but unparseable artifact is an error.
func Load(path string, logger *zap.Logger) (*Store, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Corpus artifact not found, starting with empty corpus",
				zap.String("path", path))
			return &Store{}, nil
		}
		return nil, fmt.Errorf("read corpus artifact %s: %w", path, err)
	}

	passages, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse corpus artifact %s: %w", path, err)
	}

	logger.Info("Corpus loaded",
		zap.String("path", path),
		zap.Int("passages", len(passages)),
	)
	return &Store{passages: passages}, nil
}

// New creates a store over the given passages. Used by tests and the
// ingest pipeline; the serving path goes through Load.
func New(passages []domain.Passage) *Store {
	return &Store{passages: passages}
}

// Len returns the number of passages in the corpus.
func (s *Store) Len() int { return len(s.passages) }

// All returns every passage. Callers must not mutate the slice elements.
func (s *Store) All() []domain.Passage { return s.passages }

// Eligible returns the passages admitted under the given persona filter:
// everything for "default", otherwise persona matches plus general content.
func (s *Store) Eligible(persona string) []domain.Passage {
	if persona == "" || persona == domain.PersonaDefault {
		return s.passages
	}
	eligible := make([]domain.Passage, 0, len(s.passages))
	for _, p := range s.passages {
		if p.MatchesPersona(persona) {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

func decode(data []byte) ([]domain.Passage, error) {
	var passages []domain.Passage
	if err := json.Unmarshal(data, &passages); err != nil {
		return nil, fmt.Errorf("unmarshal passages: %w", err)
	}
	for i := range passages {
		if passages[i].Persona == "" {
			passages[i].Persona = domain.PersonaGeneral
		}
	}
	return passages, nil
}
