package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaClientSummarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var payload struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Model != "qwen3-vl:8b" {
			t.Fatalf("expected model qwen3-vl:8b, got %s", payload.Model)
		}
		if !strings.Contains(payload.Prompt, "Paper title: Cool Paper") {
			t.Fatalf("prompt missing title: %s", payload.Prompt)
		}
		if payload.Stream {
			t.Fatal("expected streaming to be disabled")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"**Key Findings:** progress","done":true}`))
	}))
	defer server.Close()

	client := &ollamaClient{
		host:   server.URL,
		model:  "qwen3-vl:8b",
		client: server.Client(),
	}

	result, err := client.Summarize(context.Background(), "Cool Paper", "This is the abstract.")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if result != "**Key Findings:** progress" {
		t.Fatalf("unexpected summarize result: %s", result)
	}
}

func TestOllamaClientSummarizeRejectsEmptyContent(t *testing.T) {
	client := &ollamaClient{host: "http://unused", model: "m", client: http.DefaultClient}
	_, err := client.Summarize(context.Background(), "Title", "   ")
	if !errors.Is(err, ErrSummarizationUnavailable) {
		t.Fatalf("expected ErrSummarizationUnavailable, got %v", err)
	}
}

func TestOllamaClientWrapsAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := &ollamaClient{host: server.URL, model: "m", client: server.Client()}
	_, err := client.Summarize(context.Background(), "Title", "content")
	if !errors.Is(err, ErrSummarizationUnavailable) {
		t.Fatalf("expected ErrSummarizationUnavailable, got %v", err)
	}
}
