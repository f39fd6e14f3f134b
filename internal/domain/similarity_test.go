package domain

import (
	"math"
	"testing"
)

func TestCosine_SelfSimilarity(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0.3, -0.7, 0.2},
		{5, 5, 5, 5},
	}
	for _, v := range vectors {
		got := Cosine(v, v)
		if math.Abs(got-1.0) > 1e-9 {
			t.Errorf("Cosine(v, v) = %v, want 1.0 for %v", got, v)
		}
	}
}

func TestCosine_ZeroVector(t *testing.T) {
	v := []float32{0.5, 0.5}
	zero := []float32{0, 0}

	if got := Cosine(v, zero); got != 0 {
		t.Errorf("Cosine(v, zero) = %v, want exactly 0", got)
	}
	if got := Cosine(zero, v); got != 0 {
		t.Errorf("Cosine(zero, v) = %v, want exactly 0", got)
	}
	if got := Cosine(zero, zero); got != 0 {
		t.Errorf("Cosine(zero, zero) = %v, want exactly 0", got)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	if got := Cosine(a, b); math.Abs(got) > 1e-9 {
		t.Errorf("Cosine(orthogonal) = %v, want 0", got)
	}
}

func TestCosine_Opposite(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-1, -2, -3}
	if got := Cosine(a, b); math.Abs(got+1.0) > 1e-9 {
		t.Errorf("Cosine(opposite) = %v, want -1.0", got)
	}
}

func TestCosine_MismatchedLength(t *testing.T) {
	// Malformed corpus entries must not crash ranking; the shorter
	// vector bounds the dot product, full norms still apply.
	a := []float32{1, 0, 0, 0}
	b := []float32{1, 0}
	got := Cosine(a, b)
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Cosine(mismatched) = %v, want 0.5", got)
	}
}

func TestPassage_MatchesPersona(t *testing.T) {
	tests := []struct {
		name    string
		passage string
		filter  string
		want    bool
	}{
		{"default admits all", "naval", PersonaDefault, true},
		{"empty filter admits all", "ray", "", true},
		{"exact match", "naval", "naval", true},
		{"general fallback", PersonaGeneral, "naval", true},
		{"other persona excluded", "ray", "naval", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Passage{ID: "x", Persona: tt.passage}
			if got := p.MatchesPersona(tt.filter); got != tt.want {
				t.Errorf("MatchesPersona(%q) on %q = %v, want %v", tt.filter, tt.passage, got, tt.want)
			}
		})
	}
}

func TestPassage_Scored(t *testing.T) {
	p := Passage{
		ID:        "a1",
		Title:     "Compounding",
		Section:   "Basics",
		Source:    "general.json",
		Persona:   PersonaGeneral,
		Text:      "Money grows on money.",
		Embedding: []float32{0.1, 0.2},
	}
	sp := p.Scored(0.87)
	if sp.ID != p.ID || sp.Title != p.Title || sp.Section != p.Section || sp.Text != p.Text {
		t.Errorf("Scored lost fields: %+v", sp)
	}
	if sp.Score != 0.87 {
		t.Errorf("Scored score = %v, want 0.87", sp.Score)
	}
}
