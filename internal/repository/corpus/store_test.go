package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/finrag/internal/domain"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "embeddings.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestLoad_MissingArtifact(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("missing artifact must not error: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
}

func TestLoad_ParsesArtifact(t *testing.T) {
	path := writeArtifact(t, `[
		{"id":"a1","title":"Assets","section":"Wealth","source":"naval.json","persona":"naval","text":"Assets earn while you sleep","embedding":[0.1,0.2]},
		{"id":"a2","title":"SIP","section":"Investing","source":"general.json","text":"SIP basics","embedding":[0.3,0.4]}
	]`)

	store, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}

	// Missing persona defaults to general.
	if got := store.All()[1].Persona; got != domain.PersonaGeneral {
		t.Errorf("persona default = %q, want %q", got, domain.PersonaGeneral)
	}
}

func TestLoad_MalformedArtifact(t *testing.T) {
	path := writeArtifact(t, `{"not":"an array"`)
	if _, err := Load(path, zap.NewNop()); err == nil {
		t.Error("expected error for malformed artifact")
	}
}

func TestEligible(t *testing.T) {
	store := New([]domain.Passage{
		{ID: "a1", Persona: "naval"},
		{ID: "a2", Persona: domain.PersonaGeneral},
		{ID: "a3", Persona: "ray"},
	})

	all := store.Eligible(domain.PersonaDefault)
	if len(all) != 3 {
		t.Errorf("default eligible = %d, want 3", len(all))
	}

	naval := store.Eligible("naval")
	if len(naval) != 2 {
		t.Fatalf("naval eligible = %d, want 2", len(naval))
	}
	for _, p := range naval {
		if p.Persona != "naval" && p.Persona != domain.PersonaGeneral {
			t.Errorf("ineligible passage %q (persona %q) returned", p.ID, p.Persona)
		}
	}
}
