package domain

// PersonaGeneral tags corpus content available to every persona.
const PersonaGeneral = "general"

// PersonaDefault is the persona filter value that disables filtering.
const PersonaDefault = "default"

// Passage is a single corpus entry with its precomputed embedding.
// Passages are produced offline by the ingest job and never mutated
// by the serving process.
type Passage struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Section   string    `json:"section"`
	Source    string    `json:"source"`
	Persona   string    `json:"persona"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// ScoredPassage is a Passage projected without its embedding, carrying
// a similarity score against a query. Request-scoped.
type ScoredPassage struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Section string  `json:"section"`
	Source  string  `json:"source"`
	Persona string  `json:"persona"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// Scored projects the passage without its embedding and attaches a score.
func (p Passage) Scored(score float64) ScoredPassage {
	return ScoredPassage{
		ID:      p.ID,
		Title:   p.Title,
		Section: p.Section,
		Source:  p.Source,
		Persona: p.Persona,
		Text:    p.Text,
		Score:   score,
	}
}

// MatchesPersona reports whether the passage is eligible under the given
// persona filter. "default" admits everything; any other persona admits
// matching passages plus general content as fallback context.
func (p Passage) MatchesPersona(persona string) bool {
	if persona == "" || persona == PersonaDefault {
		return true
	}
	return p.Persona == persona || p.Persona == PersonaGeneral
}
