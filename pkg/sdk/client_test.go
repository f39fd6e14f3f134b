package finrag

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChat_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s, want /api/chat", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Message != "What is a SIP?" || req.Persona != "buffett" {
			t.Errorf("unexpected request: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ChatResponse{
			Answer: "A SIP is a systematic investment plan.",
			Sources: []Source{
				{ID: "a1", Title: "SIP", Section: "Investing", Score: 0.91},
			},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, WithAPIKey("test-key"))
	resp, err := client.Chat(context.Background(), ChatRequest{
		Message: "What is a SIP?",
		Persona: "buffett",
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Answer == "" || len(resp.Sources) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Sources[0].ID != "a1" {
		t.Errorf("source id = %s, want a1", resp.Sources[0].ID)
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
		want   error
	}{
		{"bad request", http.StatusBadRequest, "bad_request", ErrBadRequest},
		{"unauthorized", http.StatusUnauthorized, "bad_request", ErrUnauthorized},
		{"misconfigured", http.StatusInternalServerError, "configuration_error", ErrServerMisconfigured},
		{"provider down", http.StatusBadGateway, "provider_error", ErrProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code": tt.code, "message": "details",
				})
			}))
			defer srv.Close()

			_, err := New(srv.URL).Chat(context.Background(), ChatRequest{Message: "q"})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestChat_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	if _, err := New(srv.URL).Chat(context.Background(), ChatRequest{Message: "q"}); err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %s, want /health", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status: "degraded",
			Checks: map[string]string{"corpus": "empty"},
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
	if resp.Checks["corpus"] != "empty" {
		t.Errorf("checks = %v", resp.Checks)
	}
}
