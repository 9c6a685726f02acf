package llm

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultOllamaModel = "ministral-3:latest"
	defaultOllamaHost  = "http://localhost:11434"
	// OpenAI-compatible endpoint of the hosted model used by default.
	defaultOpenAIBase  = "https://generativelanguage.googleapis.com/v1beta/openai"
	defaultOpenAIModel = "gemini-2.0-flash-exp"

	// Prompts are clipped to keep headroom in the model's context
	// window (roughly 4 chars/token).
	maxSummaryChars = 200_000
)

const defaultLLMHTTPTimeout = 3 * time.Minute

// ErrSummarizationUnavailable reports a transport or API failure from
// the hosted model.
var ErrSummarizationUnavailable = errors.New("summarization unavailable")

// Client produces paper summaries from a hosted language model.
type Client interface {
	Summarize(ctx context.Context, title, content string) (string, error)
	Name() string
}

// Config describes how to build an LLM client. An APIKey selects the
// OpenAI-compatible backend; otherwise requests go to an Ollama host.
type Config struct {
	Model      string
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// New builds a client from config with environment fallbacks
// (OPENAI_API_KEY, OLLAMA_HOST, OLLAMA_MODEL).
func New(cfg Config) (Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey != "" {
		base := strings.TrimRight(cfg.Endpoint, "/")
		if base == "" {
			base = defaultOpenAIBase
		}
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return &openAIClient{
			apiKey: apiKey,
			model:  model,
			base:   base,
			client: pickHTTPClient(cfg.HTTPClient),
		}, nil
	}

	host := cfg.Endpoint
	if host == "" {
		if env := os.Getenv("OLLAMA_HOST"); env != "" {
			host = strings.TrimRight(env, "/")
		} else {
			host = defaultOllamaHost
		}
	}
	model := cfg.Model
	if model == "" {
		if env := os.Getenv("OLLAMA_MODEL"); env != "" {
			model = env
		} else {
			model = defaultOllamaModel
		}
	}
	return &ollamaClient{
		host:   host,
		model:  model,
		client: pickHTTPClient(cfg.HTTPClient),
	}, nil
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Allow longer-running generations and rely on the caller's context for cancellation.
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}
