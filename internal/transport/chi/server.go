// Package chi exposes the chat pipeline over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/finrag/internal/domain"
	"github.com/kailas-cloud/finrag/internal/logger"
	"github.com/kailas-cloud/finrag/internal/metrics"
	chatuc "github.com/kailas-cloud/finrag/internal/usecase/chat"
	guarduc "github.com/kailas-cloud/finrag/internal/usecase/guardrail"
	healthuc "github.com/kailas-cloud/finrag/internal/usecase/health"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned by the API.
const (
	CodeBadRequest         = "bad_request"
	CodeConfigurationError = "configuration_error"
	CodeProviderError      = "provider_error"
	CodeInternalError      = "internal_error"
)

// ChatRequest mirrors the public chat API schema.
type ChatRequest struct {
	UserID   string        `json:"user_id"`
	Message  string        `json:"message"`
	Locale   string        `json:"locale"`
	Persona  string        `json:"persona"`
	History  []HistoryTurn `json:"history"`
	LiteMode *bool         `json:"lite_mode"`
}

// HistoryTurn is one prior exchange. Some callers send the text under
// "message" instead of "content"; both are accepted.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Message string `json:"message"`
}

// SourceObj is one retrieved passage in the response, without its body.
type SourceObj struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Section string  `json:"section"`
	Score   float64 `json:"score"`
}

// ChatResponse is the chat API response body.
type ChatResponse struct {
	Answer  string      `json:"answer"`
	Sources []SourceObj `json:"sources"`
}

// Server handles the HTTP API.
type Server struct {
	chat      *chatuc.Service
	guardrail *guarduc.Service
	health    *healthuc.Service
	liteMode  bool
	logger    *zap.Logger
}

// NewServer creates an HTTP API server. liteMode is the default for
// requests that do not set lite_mode explicitly.
func NewServer(
	chat *chatuc.Service,
	guardrail *guarduc.Service,
	health *healthuc.Service,
	liteMode bool,
	log *zap.Logger,
) *Server {
	return &Server{
		chat:      chat,
		guardrail: guardrail,
		health:    health,
		liteMode:  liteMode,
		logger:    log,
	}
}

// Routes mounts the API handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/chat", s.handleChat)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "message is required")
		return
	}

	// Keyword pre-filter: refuse high-risk asks without spending model calls.
	if s.guardrail != nil && s.guardrail.Blocked(req.Message) {
		metrics.GuardrailBlocksTotal.Inc()
		logger.FromContext(r.Context()).Info("Chat request blocked by guardrail",
			zap.String("user_id", req.UserID))
		writeJSON(w, http.StatusOK, ChatResponse{
			Answer:  guarduc.RefusalAnswer,
			Sources: []SourceObj{},
		})
		return
	}

	liteMode := s.liteMode
	if req.LiteMode != nil {
		liteMode = *req.LiteMode
	}

	result, err := s.chat.Chat(r.Context(), chatuc.Request{
		Query:    req.Message,
		History:  normalizeHistory(req.History),
		Locale:   req.Locale,
		Persona:  req.Persona,
		LiteMode: liteMode,
	})
	if err != nil {
		s.writeChatError(w, r, err)
		return
	}

	sources := make([]SourceObj, 0, len(result.Sources))
	for _, sp := range result.Sources {
		sources = append(sources, SourceObj{
			ID:      sp.ID,
			Title:   sp.Title,
			Section: sp.Section,
			Score:   sp.Score,
		})
	}

	writeJSON(w, http.StatusOK, ChatResponse{Answer: result.Answer, Sources: sources})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) writeChatError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch {
	case errors.Is(err, domain.ErrGenerationNotConfigured),
		errors.Is(err, domain.ErrEmbeddingNotConfigured):
		log.Error("Chat pipeline misconfigured", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeConfigurationError, err.Error())
	case errors.Is(err, domain.ErrEmbeddingProviderError),
		errors.Is(err, domain.ErrGenerationProviderError):
		log.Error("Model provider failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, CodeProviderError, "model provider unavailable")
	default:
		log.Error("Chat request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
	}
}

// normalizeHistory maps turn-like records to the canonical {role, content}
// shape once at the ingress boundary.
func normalizeHistory(turns []HistoryTurn) []domain.ConversationTurn {
	if len(turns) == 0 {
		return nil
	}
	out := make([]domain.ConversationTurn, 0, len(turns))
	for _, t := range turns {
		content := t.Content
		if content == "" {
			content = t.Message
		}
		role := t.Role
		if role == "" {
			role = "unknown"
		}
		out = append(out, domain.ConversationTurn{Role: role, Content: content})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
