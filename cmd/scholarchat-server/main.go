package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dmehra/scholarchat/internal/arxiv"
	"github.com/dmehra/scholarchat/internal/config"
	"github.com/dmehra/scholarchat/internal/history"
	"github.com/dmehra/scholarchat/internal/llm"
	"github.com/dmehra/scholarchat/internal/router"
	"github.com/dmehra/scholarchat/internal/server"
	"github.com/dmehra/scholarchat/internal/session"
)

const (
	sessionTTL         = 2 * time.Hour
	sessionSweepPeriod = 15 * time.Minute
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to open history database")
	}
	defer store.Close()

	summarizer, err := llm.New(llm.Config{
		Model:    cfg.LLMModel,
		Endpoint: cfg.LLMEndpoint,
		APIKey:   cfg.LLMAPIKey,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to build summarizer")
	}
	logger.WithField("backend", summarizer.Name()).Info("summarizer ready")

	downloader, err := arxiv.NewDownloader(cfg.DownloadsDir, nil)
	if err != nil {
		logger.WithError(err).Fatal("failed to prepare downloads directory")
	}

	search := arxiv.NewClient(arxiv.ClientConfig{
		Endpoint: cfg.ArxivEndpoint,
		Limit:    cfg.SearchLimit,
	})

	app := &server.App{
		Router:   router.New(search, summarizer, downloader, store, logger),
		Sessions: session.NewStore(),
		History:  store,
		Logger:   logger,
	}

	go func() {
		ticker := time.NewTicker(sessionSweepPeriod)
		defer ticker.Stop()
		for range ticker.C {
			if removed := app.Sessions.Expire(time.Now().Add(-sessionTTL)); removed > 0 {
				logger.WithField("count", removed).Debug("expired idle sessions")
			}
		}
	}()

	logger.WithField("addr", cfg.ListenAddr).Info("starting server")
	if err := app.Engine().Run(cfg.ListenAddr); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
