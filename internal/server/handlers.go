package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmehra/scholarchat/internal/arxiv"
	"github.com/dmehra/scholarchat/internal/history"
	"github.com/dmehra/scholarchat/internal/llm"
	"github.com/dmehra/scholarchat/internal/render"
	"github.com/dmehra/scholarchat/internal/router"
)

// ChatRequest is one user message bound for the router.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse mirrors the original API shape: a rendered text reply
// plus structured fields when the dispatch produced them.
type ChatResponse struct {
	SessionID    string      `json:"session_id"`
	Response     string      `json:"response"`
	Papers       []PaperView `json:"papers,omitempty"`
	Summary      string      `json:"summary,omitempty"`
	DownloadPath string      `json:"download_path,omitempty"`
}

// PaperView is the wire form of a paper record.
type PaperView struct {
	ID       string   `json:"id"`
	ArxivID  string   `json:"arxiv_id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Year     int      `json:"year"`
	Abstract string   `json:"abstract"`
	PDFURL   string   `json:"pdf_url"`
}

// ErrorResponse carries a machine-readable failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (a *App) handleChat(ctx *gin.Context) {
	var in ChatRequest
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	sess := a.Sessions.GetOrCreate(in.SessionID)
	result, err := a.Router.Handle(ctx.Request.Context(), sess, in.Message)
	if err != nil {
		switch {
		case errors.Is(err, history.ErrHistoryUnavailable):
			a.Logger.WithError(err).WithField("session", sess.ID).Error("history storage failure")
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		case isDownstreamError(err):
			a.Logger.WithError(err).WithField("session", sess.ID).Error("downstream failure")
			ctx.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		default:
			// Reference errors are conversational replies, not API failures.
			ctx.JSON(http.StatusOK, ChatResponse{
				SessionID: sess.ID,
				Response:  render.ErrorText(err),
			})
		}
		return
	}

	out := ChatResponse{
		SessionID: sess.ID,
		Response:  render.Text(result),
	}
	switch r := result.(type) {
	case router.SearchPerformed:
		out.Papers = toPaperViews(r.Papers)
	case router.SummaryProduced:
		out.Summary = r.Text
	case router.DownloadStarted:
		out.DownloadPath = r.Path
	}
	ctx.JSON(http.StatusOK, out)
}

func (a *App) handleSearchHistory(ctx *gin.Context) {
	sessionID := ctx.Param("session_id")
	entries, err := a.History.List(ctx.Request.Context(), sessionID, 50)
	if err != nil {
		a.Logger.WithError(err).WithField("session", sessionID).Error("history lookup failed")
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"history": entries})
}

func isDownstreamError(err error) bool {
	return errors.Is(err, arxiv.ErrSearchUnavailable) ||
		errors.Is(err, llm.ErrSummarizationUnavailable) ||
		errors.Is(err, arxiv.ErrDownloadFailed)
}

func toPaperViews(papers []arxiv.Paper) []PaperView {
	views := make([]PaperView, 0, len(papers))
	for _, paper := range papers {
		views = append(views, PaperView{
			ID:       paper.ID,
			ArxivID:  paper.ArxivID,
			Title:    paper.Title,
			Authors:  paper.Authors,
			Year:     paper.Year,
			Abstract: paper.Abstract,
			PDFURL:   paper.PDFURL,
		})
	}
	return views
}
