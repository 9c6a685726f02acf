// Package server exposes the router over HTTP. It is a thin
// presentation layer: classification, state, and downstream calls all
// live behind the router.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dmehra/scholarchat/internal/history"
	"github.com/dmehra/scholarchat/internal/router"
	"github.com/dmehra/scholarchat/internal/session"
)

// App bundles the collaborators the HTTP handlers need.
type App struct {
	Router   *router.Router
	Sessions *session.Store
	History  *history.Store
	Logger   *logrus.Logger
}

// Engine builds the gin engine with all routes mounted.
func (a *App) Engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), a.requestLogger())

	engine.POST("/chat", a.handleChat)
	engine.GET("/search-history/:session_id", a.handleSearchHistory)
	engine.GET("/health", a.handleHealth)
	return engine
}

func (a *App) requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		a.Logger.WithFields(logrus.Fields{
			"method":  ctx.Request.Method,
			"path":    ctx.Request.URL.Path,
			"status":  ctx.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Info("request handled")
	}
}

func (a *App) handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
