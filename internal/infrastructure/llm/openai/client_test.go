package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
	"github.com/vlasenko/incident-analyst/internal/infrastructure/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	exec := resilience.NewExecutor(func() resilience.Config {
		cfg := resilience.SingleAttempt()
		cfg.BreakerEnabled = false
		return cfg
	}())
	client := New(Config{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4"}, exec)
	return client, server
}

func chatContent(text string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"role":"assistant","content":%q}}]}`, text)
}

func TestSummarizeSendsExpectedRequest(t *testing.T) {
	var captured chatRequest
	var authHeader string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(chatContent("Short summary.")))
	})

	summary, err := NewAnalyst(client).Summarize(context.Background(), "worker fell from scaffolding")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary != "Short summary." {
		t.Fatalf("unexpected summary: %q", summary)
	}
	if authHeader != "Bearer test-key" {
		t.Fatalf("unexpected auth header: %q", authHeader)
	}
	if captured.Model != "gpt-4" || captured.Temperature != 0.3 || captured.MaxTokens != 300 {
		t.Fatalf("unexpected generation settings: %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages: %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[1].Content, "worker fell from scaffolding") {
		t.Fatalf("pdf text missing from prompt: %q", captured.Messages[1].Content)
	}
}

func TestAnalyzeEmbedsIncidentDetails(t *testing.T) {
	var captured chatRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(chatContent("Detailed analysis.")))
	})

	fields := domain.IncidentFields{
		DateOfInjury:             "2024-01-15",
		LocationOfIncident:       "Site A",
		CauseOfIncident:          "Fall",
		TypeOfIncident:           "Accident",
		StatutoryViolationsCited: []string{"OSHA 1926.451", "OSHA 1926.501"},
	}
	if _, err := NewAnalyst(client).Analyze(context.Background(), fields); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if captured.Temperature != 0.7 || captured.MaxTokens != 800 {
		t.Fatalf("unexpected generation settings: %+v", captured)
	}
	prompt := captured.Messages[1].Content
	for _, want := range []string{"Site A", "Fall", "OSHA 1926.451, OSHA 1926.501"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q: %s", want, prompt)
		}
	}
}

func TestCompleteSurfacesHTTPStatus(t *testing.T) {
	hits := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "model overloaded", http.StatusBadGateway)
	})

	_, err := NewAnalyst(client).Summarize(context.Background(), "text")
	if !domain.IsKind(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected a single provider call, got %d", hits)
	}
}

func TestSummarizeRejectsEmptyContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := NewAnalyst(client).Summarize(context.Background(), "text")
	if !domain.IsKind(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if !strings.Contains(err.Error(), "no summary generated") {
		t.Fatalf("unexpected error: %v", err)
	}
}
