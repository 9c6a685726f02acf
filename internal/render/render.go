// Package render turns router results into the plain text shown in the
// conversation. It is a pure formatting layer with no I/O.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmehra/scholarchat/internal/arxiv"
	"github.com/dmehra/scholarchat/internal/router"
)

const maxAuthorsShown = 3

const helpText = "I can search for papers (\"find papers about federated learning\"), " +
	"summarize one (\"summarize the first paper\"), download a PDF " +
	"(\"download paper_<id>\"), or show your history."

// Text renders one dispatch result as chat text.
func Text(result router.Result) string {
	switch r := result.(type) {
	case router.SearchPerformed:
		return searchText(r)
	case router.SummaryProduced:
		return fmt.Sprintf("Summary of %q:\n\n%s", r.Paper.Title, r.Text)
	case router.DownloadStarted:
		return fmt.Sprintf("Saved %q to %s", r.Paper.Title, r.Path)
	case router.HistoryListed:
		return historyText(r)
	case router.Unrecognized:
		return "I didn't catch that. " + helpText
	default:
		return helpText
	}
}

func searchText(r router.SearchPerformed) string {
	if len(r.Papers) == 0 {
		return fmt.Sprintf("No papers found for %q. Try rephrasing the query.", r.Query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d papers for %q:\n\n", len(r.Papers), r.Query)
	for i, paper := range r.Papers {
		fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, paper.Title, paper.Year)
		fmt.Fprintf(&b, "   Authors: %s\n", authorLine(paper))
		fmt.Fprintf(&b, "   Paper ID: %s\n\n", paper.ID)
	}
	b.WriteString("Say \"summarize the first paper\" or \"download paper_<id>\" to continue.")
	return b.String()
}

func authorLine(paper arxiv.Paper) string {
	if len(paper.Authors) == 0 {
		return "unknown"
	}
	shown := paper.Authors
	suffix := ""
	if len(shown) > maxAuthorsShown {
		shown = shown[:maxAuthorsShown]
		suffix = " et al."
	}
	return strings.Join(shown, ", ") + suffix
}

func historyText(r router.HistoryListed) string {
	if len(r.Entries) == 0 {
		return "No history yet for this session."
	}
	var b strings.Builder
	b.WriteString("Your recent activity:\n")
	for _, entry := range r.Entries {
		fmt.Fprintf(&b, "- [%s] %s (%s)\n", entry.Intent, entry.Query, entry.Timestamp.Format("2006-01-02 15:04"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// ErrorText renders a dispatch error as a conversational reply.
func ErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, router.ErrAmbiguousReference):
		return "I'm not sure which paper you mean. Search first, then reference a paper by position or paper_<id>."
	case errors.Is(err, router.ErrPositionOutOfRange):
		return "That position is past the end of the last search results."
	case errors.Is(err, router.ErrEmptyMessage):
		return "Say something and I'll try to help. " + helpText
	default:
		return "Something went wrong talking to a downstream service. Please try again."
	}
}
