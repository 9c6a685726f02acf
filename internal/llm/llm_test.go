package llm

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestPickHTTPClientHonorsCustomClient(t *testing.T) {
	custom := &http.Client{Timeout: 42 * time.Second}
	if got := pickHTTPClient(custom); got != custom {
		t.Fatalf("expected custom client to be returned")
	}
}

func TestPickHTTPClientUsesLongerTimeout(t *testing.T) {
	client := pickHTTPClient(nil)
	if client.Timeout != defaultLLMHTTPTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultLLMHTTPTimeout, client.Timeout)
	}
}

func TestNewSelectsOpenAIWhenKeyPresent(t *testing.T) {
	client, err := New(Config{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !strings.HasPrefix(client.Name(), "OpenAI") {
		t.Fatalf("expected OpenAI backend, got %s", client.Name())
	}
}

func TestNewFallsBackToOllama(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OLLAMA_MODEL", "llama3:latest")
	client, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.Name() != "Ollama (llama3:latest)" {
		t.Fatalf("unexpected backend: %s", client.Name())
	}
}

func TestClipTextRespectsLimit(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 50)
	if got := clipText(long, 10); len(got) != 10 {
		t.Fatalf("expected 10 chars, got %d", len(got))
	}
	if got := clipText("  short  ", 100); got != "short" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
}

func TestBuildSummaryPromptMentionsStructure(t *testing.T) {
	t.Parallel()

	prompt := buildSummaryPrompt("Cool Paper", "Some content.")
	for _, want := range []string{"Paper title: Cool Paper", "**Key Findings:**", "**Methodology:**", "**Significance:**", "Some content."} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if !strings.Contains(buildSummaryPrompt("", "x"), "Paper title: the paper") {
		t.Fatalf("expected fallback title")
	}
}
