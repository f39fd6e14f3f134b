package retrieve

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/finrag/internal/domain"
	"github.com/kailas-cloud/finrag/internal/repository/corpus"
)

// mockEmbedder returns a fixed vector per query text.
type mockEmbedder struct {
	vectors map[string][]float32
	errs    map[string]error
	calls   int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if err, ok := m.errs[text]; ok {
		return domain.EmbeddingResult{}, err
	}
	vec, ok := m.vectors[text]
	if !ok {
		return domain.EmbeddingResult{Embedding: []float32{0, 0}}, nil
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

func testCorpus() *corpus.Store {
	return corpus.New([]domain.Passage{
		{ID: "a1", Title: "Assets", Persona: "naval", Text: "Assets earn while you sleep", Embedding: []float32{1, 0}},
		{ID: "a2", Title: "SIP", Persona: domain.PersonaGeneral, Text: "SIP basics", Embedding: []float32{0, 1}},
		{ID: "a3", Title: "Machine", Persona: "ray", Text: "The economy is a machine", Embedding: []float32{0.7, 0.7}},
	})
}

func TestRetrieve_NoEmbedderConfigured(t *testing.T) {
	svc := New(testCorpus(), nil, zap.NewNop())
	_, err := svc.Retrieve(context.Background(), []string{"q"}, 5, domain.PersonaDefault)
	if !errors.Is(err, domain.ErrEmbeddingNotConfigured) {
		t.Errorf("err = %v, want ErrEmbeddingNotConfigured", err)
	}
}

func TestRetrieve_RanksByScoreDescending(t *testing.T) {
	embed := &mockEmbedder{vectors: map[string][]float32{"q": {1, 0.1}}}
	svc := New(testCorpus(), embed, zap.NewNop())

	got, err := svc.Retrieve(context.Background(), []string{"q"}, 5, domain.PersonaDefault)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("results not sorted descending at %d: %v", i, got)
		}
	}
	// q points almost along a1's embedding.
	if got[0].ID != "a1" {
		t.Errorf("top result = %q, want a1", got[0].ID)
	}
}

func TestRetrieve_Deterministic(t *testing.T) {
	embed := &mockEmbedder{vectors: map[string][]float32{"q": {0.5, 0.5}}}
	svc := New(testCorpus(), embed, zap.NewNop())

	first, err := svc.Retrieve(context.Background(), []string{"q"}, 5, domain.PersonaDefault)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	second, err := svc.Retrieve(context.Background(), []string{"q"}, 5, domain.PersonaDefault)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated retrieval ordering differs:\n%v\n%v", first, second)
	}
}

func TestRetrieve_RespectsTopK(t *testing.T) {
	embed := &mockEmbedder{vectors: map[string][]float32{"q": {1, 1}}}
	svc := New(testCorpus(), embed, zap.NewNop())

	got, err := svc.Retrieve(context.Background(), []string{"q"}, 2, domain.PersonaDefault)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestRetrieve_PersonaFilter(t *testing.T) {
	embed := &mockEmbedder{vectors: map[string][]float32{"q": {1, 1}}}
	svc := New(testCorpus(), embed, zap.NewNop())

	got, err := svc.Retrieve(context.Background(), []string{"q"}, 5, "naval")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (naval + general)", len(got))
	}
	for _, sp := range got {
		if sp.Persona != "naval" && sp.Persona != domain.PersonaGeneral {
			t.Errorf("passage %q has ineligible persona %q", sp.ID, sp.Persona)
		}
	}
}

func TestRetrieve_FirstQueryWins(t *testing.T) {
	// Second query would score a1 higher, but the first query's score
	// must stick.
	embed := &mockEmbedder{vectors: map[string][]float32{
		"first":  {0, 1},
		"second": {1, 0},
	}}
	svc := New(testCorpus(), embed, zap.NewNop())

	got, err := svc.Retrieve(context.Background(), []string{"first", "second"}, 5, domain.PersonaDefault)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	var a1Score float64
	seen := map[string]int{}
	for _, sp := range got {
		seen[sp.ID]++
		if sp.ID == "a1" {
			a1Score = sp.Score
		}
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("duplicate id %q in results", id)
		}
	}
	// Under "first" ({0,1}), a1 ({1,0}) scores 0. Under "second" it would
	// score 1. First-query-wins keeps the 0.
	if a1Score != 0 {
		t.Errorf("a1 score = %v, want 0 (first query's score)", a1Score)
	}
}

func TestRetrieve_SkipsFailedQueryEmbeddings(t *testing.T) {
	embed := &mockEmbedder{
		vectors: map[string][]float32{"good": {1, 0}, "also good": {0, 1}},
		errs:    map[string]error{"bad": errors.New("embedding API down")},
	}
	svc := New(testCorpus(), embed, zap.NewNop())

	got, err := svc.Retrieve(context.Background(), []string{"bad", "good", "also good"}, 5, domain.PersonaDefault)
	if err != nil {
		t.Fatalf("partial embedding failure must not error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected results from remaining queries")
	}
	if embed.calls != 3 {
		t.Errorf("embed calls = %d, want 3", embed.calls)
	}
}

func TestRetrieve_AllQueriesFail(t *testing.T) {
	embed := &mockEmbedder{errs: map[string]error{"q": errors.New("down")}}
	svc := New(testCorpus(), embed, zap.NewNop())

	got, err := svc.Retrieve(context.Background(), []string{"q"}, 5, domain.PersonaDefault)
	if err != nil {
		t.Fatalf("degraded retrieval must not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestRetrieve_ZeroNormEmbeddingScoresZero(t *testing.T) {
	store := corpus.New([]domain.Passage{
		{ID: "ok", Persona: domain.PersonaGeneral, Embedding: []float32{1, 0}},
		{ID: "malformed", Persona: domain.PersonaGeneral, Embedding: nil},
	})
	embed := &mockEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
	svc := New(store, embed, zap.NewNop())

	got, err := svc.Retrieve(context.Background(), []string{"q"}, 5, domain.PersonaDefault)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "ok" || got[1].ID != "malformed" {
		t.Errorf("order = %q, %q; want ok then malformed", got[0].ID, got[1].ID)
	}
	if got[1].Score != 0 {
		t.Errorf("malformed passage score = %v, want 0", got[1].Score)
	}
}
