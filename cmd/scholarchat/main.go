package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/dmehra/scholarchat/internal/arxiv"
	"github.com/dmehra/scholarchat/internal/config"
	"github.com/dmehra/scholarchat/internal/history"
	"github.com/dmehra/scholarchat/internal/llm"
	"github.com/dmehra/scholarchat/internal/router"
	"github.com/dmehra/scholarchat/internal/session"
	"github.com/dmehra/scholarchat/internal/tui"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Println("failed to load configuration:", err)
		os.Exit(1)
	}

	// The terminal belongs to the TUI; keep log output out of it.
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	if path := os.Getenv("SCHOLARCHAT_LOG_FILE"); path != "" {
		if file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			logger.SetOutput(file)
		}
	}

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		fmt.Println("failed to open history database:", err)
		os.Exit(1)
	}
	defer store.Close()

	summarizer, err := llm.New(llm.Config{
		Model:    cfg.LLMModel,
		Endpoint: cfg.LLMEndpoint,
		APIKey:   cfg.LLMAPIKey,
	})
	if err != nil {
		fmt.Println("failed to build summarizer:", err)
		os.Exit(1)
	}

	downloader, err := arxiv.NewDownloader(cfg.DownloadsDir, nil)
	if err != nil {
		fmt.Println("failed to prepare downloads directory:", err)
		os.Exit(1)
	}

	search := arxiv.NewClient(arxiv.ClientConfig{
		Endpoint: cfg.ArxivEndpoint,
		Limit:    cfg.SearchLimit,
	})

	dispatch := router.New(search, summarizer, downloader, store, logger)
	sess := session.NewStore().GetOrCreate("")

	program := tea.NewProgram(
		tui.New(tui.Config{Router: dispatch, Session: sess}),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
