package expand

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/finrag/internal/domain"
)

type mockGenerator struct {
	text string
	err  error
}

func (m *mockGenerator) Generate(_ context.Context, _, _ string) (domain.GenerationResult, error) {
	if m.err != nil {
		return domain.GenerationResult{}, m.err
	}
	return domain.GenerationResult{Text: m.text}, nil
}

func TestExpand_IncludesOriginalFirst(t *testing.T) {
	gen := &mockGenerator{text: "mutual fund basics\nhow to start a SIP\nindex fund investing"}
	svc := New(gen, zap.NewNop())

	got := svc.Expand(context.Background(), "How do I start investing?")
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4: %v", len(got), got)
	}
	if got[0] != "How do I start investing?" {
		t.Errorf("got[0] = %q, want original query first", got[0])
	}
}

func TestExpand_Deduplicates(t *testing.T) {
	gen := &mockGenerator{text: "same query\nsame query\noriginal"}
	svc := New(gen, zap.NewNop())

	got := svc.Expand(context.Background(), "original")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(got), got)
	}
	if got[0] != "original" || got[1] != "same query" {
		t.Errorf("got %v", got)
	}
}

func TestExpand_CapsAtFour(t *testing.T) {
	gen := &mockGenerator{text: "a\nb\nc\nd\ne\nf"}
	svc := New(gen, zap.NewNop())

	got := svc.Expand(context.Background(), "q")
	if len(got) != 4 {
		t.Errorf("len = %d, want 4: %v", len(got), got)
	}
}

func TestExpand_SkipsBlankLines(t *testing.T) {
	gen := &mockGenerator{text: "\n  \nalternate one\n\n  alternate two  \n"}
	svc := New(gen, zap.NewNop())

	got := svc.Expand(context.Background(), "q")
	want := []string{"q", "alternate one", "alternate two"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExpand_FallsBackOnError(t *testing.T) {
	gen := &mockGenerator{err: errors.New("model down")}
	svc := New(gen, zap.NewNop())

	got := svc.Expand(context.Background(), "q")
	if len(got) != 1 || got[0] != "q" {
		t.Errorf("got %v, want [q]", got)
	}
}
