package router

import (
	"github.com/dmehra/scholarchat/internal/arxiv"
	"github.com/dmehra/scholarchat/internal/history"
)

// Result is the tagged outcome of one dispatch. Exactly one concrete
// type is returned per handled message.
type Result interface {
	isResult()
}

// SearchPerformed carries the papers a search intent produced. Papers
// may be empty; the session still records the (empty) result set.
type SearchPerformed struct {
	Query  string
	Papers []arxiv.Paper
}

// SummaryProduced carries a generated summary for one paper.
type SummaryProduced struct {
	Paper arxiv.Paper
	Text  string
}

// DownloadStarted reports where a paper's PDF was saved.
type DownloadStarted struct {
	Paper arxiv.Paper
	Path  string
}

// HistoryListed carries the session's past interactions, newest first.
type HistoryListed struct {
	Entries []history.Entry
}

// Unrecognized marks a message no rule matched. It is a result, not an
// error: the dispatch succeeded, nothing downstream was called.
type Unrecognized struct{}

func (SearchPerformed) isResult() {}
func (SummaryProduced) isResult() {}
func (DownloadStarted) isResult() {}
func (HistoryListed) isResult()   {}
func (Unrecognized) isResult()    {}

var (
	_ Result = SearchPerformed{}
	_ Result = SummaryProduced{}
	_ Result = DownloadStarted{}
	_ Result = HistoryListed{}
	_ Result = Unrecognized{}
)
