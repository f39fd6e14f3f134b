package finrag

// HistoryTurn is one prior exchange in a conversation.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for Chat.
type ChatRequest struct {
	// UserID identifies the caller for logging. Optional.
	UserID string `json:"user_id,omitempty"`
	// Message is the user's question. Required.
	Message string `json:"message"`
	// Locale hints the answer language, e.g. "en-IN". Optional.
	Locale string `json:"locale,omitempty"`
	// Persona selects a mentor voice: "naval", "ray", "buffett".
	// Empty or "default" retrieves across all personas.
	Persona string `json:"persona,omitempty"`
	// History is the prior conversation, oldest first.
	History []HistoryTurn `json:"history,omitempty"`
	// LiteMode skips query expansion when true. Nil uses the server default.
	LiteMode *bool `json:"lite_mode,omitempty"`
}

// Source is one retrieved passage backing the answer.
type Source struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Section string  `json:"section"`
	Score   float64 `json:"score"`
}

// ChatResponse is the answer with its supporting sources.
type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// HealthResponse reports server health per component.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
