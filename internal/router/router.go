// Package router is the dispatch core: it classifies one free-text
// message against the session's current state, performs exactly one
// downstream action, and records the interaction in history.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dmehra/scholarchat/internal/arxiv"
	"github.com/dmehra/scholarchat/internal/history"
	"github.com/dmehra/scholarchat/internal/session"
)

var (
	// ErrEmptyMessage rejects blank input before classification.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrAmbiguousReference means no paper could be resolved: either
	// the session has no search result yet, or the message named
	// nothing the current result set contains.
	ErrAmbiguousReference = errors.New("ambiguous paper reference")
	// ErrPositionOutOfRange means an ordinal reference exceeded the
	// current result count.
	ErrPositionOutOfRange = errors.New("paper position out of range")
)

// Searcher is the paper-search capability the router dispatches to.
type Searcher interface {
	Search(ctx context.Context, query string, opts arxiv.SearchOptions) ([]arxiv.Paper, error)
}

// Summarizer produces a summary for paper text.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string) (string, error)
}

// PDFFetcher downloads paper PDFs and reports previously fetched ones.
type PDFFetcher interface {
	Fetch(ctx context.Context, pdfURL string) (string, error)
	LocalPath(pdfURL string) string
}

// HistoryStore is the durable append-only interaction log.
type HistoryStore interface {
	Append(ctx context.Context, entry history.Entry) error
	List(ctx context.Context, sessionID string, limit int) ([]history.Entry, error)
}

const historyListLimit = 20

// Router dispatches messages. It is stateless per call; all
// conversational state lives in the session passed to Handle.
type Router struct {
	search     Searcher
	summarizer Summarizer
	pdfs       PDFFetcher
	log        logrus.FieldLogger
	store      HistoryStore
}

// New wires a router from its collaborators. Any of them may be a fake
// in tests; logger must not be nil.
func New(search Searcher, summarizer Summarizer, pdfs PDFFetcher, store HistoryStore, log logrus.FieldLogger) *Router {
	return &Router{
		search:     search,
		summarizer: summarizer,
		pdfs:       pdfs,
		store:      store,
		log:        log,
	}
}

// Handle classifies message, performs the matching action against
// sess, appends one history entry for the dispatch, and returns the
// tagged result. Dispatches for the same session are serialized: a
// second message blocks until the first completes. Reference and
// downstream failures come back as typed errors; nothing is appended
// to history for a failed dispatch.
func (r *Router) Handle(ctx context.Context, sess *session.Session, message string) (Result, error) {
	sess.BeginDispatch()
	defer sess.EndDispatch()

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	intent := Classify(message)
	r.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"intent":  intent,
	}).Debug("classified message")

	switch intent {
	case IntentSearch:
		return r.handleSearch(ctx, sess, message)
	case IntentSummarize:
		return r.handleSummarize(ctx, sess, message)
	case IntentDownload:
		return r.handleDownload(ctx, sess, message)
	case IntentHistory:
		return r.handleHistory(ctx, sess, message)
	default:
		r.appendHistory(ctx, sess.ID, message, IntentUnrecognized, "")
		return Unrecognized{}, nil
	}
}

func (r *Router) handleSearch(ctx context.Context, sess *session.Session, message string) (Result, error) {
	query, year := extractSearchQuery(message)
	if query == "" {
		query = message
	}

	papers, err := r.search.Search(ctx, query, arxiv.SearchOptions{Year: year})
	if err != nil {
		r.log.WithError(err).WithField("session", sess.ID).Error("search dispatch failed")
		return nil, err
	}

	sess.SetSearchResult(papers)
	r.appendHistory(ctx, sess.ID, message, IntentSearch, fmt.Sprintf("%d papers for %q", len(papers), query))
	return SearchPerformed{Query: query, Papers: papers}, nil
}

func (r *Router) handleSummarize(ctx context.Context, sess *session.Session, message string) (Result, error) {
	paper, err := r.resolvePaper(sess, message)
	if err != nil {
		return nil, err
	}

	content := paper.Abstract
	if content == "" && r.pdfs != nil {
		// No abstract in the feed; fall back to the downloaded PDF
		// when one exists.
		if path := r.pdfs.LocalPath(paper.PDFURL); path != "" {
			if text, err := arxiv.ExtractText(path); err == nil {
				content = text
			}
		}
	}

	text, err := r.summarizer.Summarize(ctx, paper.Title, content)
	if err != nil {
		r.log.WithError(err).WithField("paper", paper.ID).Error("summarize dispatch failed")
		return nil, err
	}

	sess.SetSelected(paper)
	r.appendHistory(ctx, sess.ID, message, IntentSummarize, "summarized "+paper.ID)
	return SummaryProduced{Paper: paper, Text: text}, nil
}

func (r *Router) handleDownload(ctx context.Context, sess *session.Session, message string) (Result, error) {
	paper, err := r.resolvePaper(sess, message)
	if err != nil {
		return nil, err
	}

	path, err := r.pdfs.Fetch(ctx, paper.PDFURL)
	if err != nil {
		r.log.WithError(err).WithField("paper", paper.ID).Error("download dispatch failed")
		return nil, err
	}

	sess.SetSelected(paper)
	r.appendHistory(ctx, sess.ID, message, IntentDownload, "downloaded "+paper.ID)
	return DownloadStarted{Paper: paper, Path: path}, nil
}

func (r *Router) handleHistory(ctx context.Context, sess *session.Session, message string) (Result, error) {
	entries, err := r.store.List(ctx, sess.ID, historyListLimit)
	if err != nil {
		r.log.WithError(err).WithField("session", sess.ID).Error("history dispatch failed")
		return nil, err
	}

	r.appendHistory(ctx, sess.ID, message, IntentHistory, fmt.Sprintf("listed %d entries", len(entries)))
	return HistoryListed{Entries: entries}, nil
}

// resolvePaper finds the paper a message refers to, by explicit
// paper_<id> handle first, then by 1-indexed ordinal, both against the
// session's current search result.
func (r *Router) resolvePaper(sess *session.Session, message string) (arxiv.Paper, error) {
	_, searched := sess.LastResult()

	if id := extractPaperID(message); id != "" {
		if !searched {
			return arxiv.Paper{}, fmt.Errorf("%w: no search results in this session", ErrAmbiguousReference)
		}
		paper, ok := sess.PaperByID(id)
		if !ok {
			return arxiv.Paper{}, fmt.Errorf("%w: %s is not in the current results", ErrAmbiguousReference, id)
		}
		return paper, nil
	}

	if ordinal := extractOrdinal(message); ordinal != 0 {
		if !searched {
			return arxiv.Paper{}, fmt.Errorf("%w: no search results in this session", ErrAmbiguousReference)
		}
		if ordinal == -1 {
			ordinal = sess.ResultCount()
		}
		paper, ok := sess.PaperAt(ordinal)
		if !ok {
			return arxiv.Paper{}, fmt.Errorf("%w: position %d of %d", ErrPositionOutOfRange, ordinal, sess.ResultCount())
		}
		return paper, nil
	}

	return arxiv.Paper{}, fmt.Errorf("%w: no paper id or position in message", ErrAmbiguousReference)
}

// appendHistory records a dispatch. A failed append is logged and
// swallowed so the reply still reaches the user.
func (r *Router) appendHistory(ctx context.Context, sessionID, query string, intent Intent, summary string) {
	entry := history.Entry{
		SessionID: sessionID,
		Query:     query,
		Intent:    string(intent),
		Summary:   summary,
	}
	if err := r.store.Append(ctx, entry); err != nil {
		r.log.WithError(err).WithField("session", sessionID).Warn("failed to append history entry")
	}
}
