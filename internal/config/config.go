// Package config resolves runtime settings from flags, environment
// variables, and an optional TOML file, in that order of precedence.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds application configuration.
type Config struct {
	ListenAddr    string `toml:"listen_addr"`
	HistoryPath   string `toml:"history_path"`
	DownloadsDir  string `toml:"downloads_dir"`
	ArxivEndpoint string `toml:"arxiv_endpoint"`
	SearchLimit   int    `toml:"search_limit"`
	LLMModel      string `toml:"llm_model"`
	LLMEndpoint   string `toml:"llm_endpoint"`
	LLMAPIKey     string `toml:"llm_api_key"`
	LogLevel      string `toml:"log_level"`
}

func defaults() Config {
	return Config{
		ListenAddr:   ":8000",
		HistoryPath:  "scholarchat.db",
		DownloadsDir: "downloads",
		SearchLimit:  5,
		LogLevel:     "info",
	}
}

// Load parses args (without the program name) and resolves the final
// configuration.
func Load(args []string) (Config, error) {
	cfg := defaults()

	fs := flag.NewFlagSet("scholarchat", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML config file")
	listen := fs.String("listen", "", "HTTP listen address")
	db := fs.String("db", "", "path to the history database")
	downloads := fs.String("downloads", "", "directory for downloaded PDFs")
	arxivEndpoint := fs.String("arxiv-endpoint", "", "arXiv API base URL")
	searchLimit := fs.Int("search-limit", 0, "max papers per search")
	llmModel := fs.String("llm-model", "", "model name for the summarizer")
	llmEndpoint := fs.String("llm-endpoint", "", "summarizer endpoint (Ollama host or OpenAI-compatible base)")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *configPath != "" {
		if _, err := toml.DecodeFile(*configPath, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyEnv(&cfg)

	// Flags win over everything else.
	overrideString(&cfg.ListenAddr, *listen)
	overrideString(&cfg.HistoryPath, *db)
	overrideString(&cfg.DownloadsDir, *downloads)
	overrideString(&cfg.ArxivEndpoint, *arxivEndpoint)
	overrideString(&cfg.LLMModel, *llmModel)
	overrideString(&cfg.LLMEndpoint, *llmEndpoint)
	overrideString(&cfg.LogLevel, *logLevel)
	if *searchLimit > 0 {
		cfg.SearchLimit = *searchLimit
	}

	if cfg.SearchLimit <= 0 {
		return Config{}, fmt.Errorf("search_limit must be positive, got %d", cfg.SearchLimit)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrideString(&cfg.ListenAddr, os.Getenv("SCHOLARCHAT_LISTEN"))
	overrideString(&cfg.HistoryPath, os.Getenv("SCHOLARCHAT_DB"))
	overrideString(&cfg.DownloadsDir, os.Getenv("SCHOLARCHAT_DOWNLOADS"))
	overrideString(&cfg.ArxivEndpoint, os.Getenv("SCHOLARCHAT_ARXIV_ENDPOINT"))
	overrideString(&cfg.LLMModel, os.Getenv("SCHOLARCHAT_LLM_MODEL"))
	overrideString(&cfg.LLMEndpoint, os.Getenv("SCHOLARCHAT_LLM_ENDPOINT"))
	overrideString(&cfg.LLMAPIKey, os.Getenv("SCHOLARCHAT_LLM_API_KEY"))
	overrideString(&cfg.LogLevel, os.Getenv("SCHOLARCHAT_LOG_LEVEL"))
	if raw := os.Getenv("SCHOLARCHAT_SEARCH_LIMIT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.SearchLimit = n
		}
	}
}

func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
