package render

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmehra/scholarchat/internal/arxiv"
	"github.com/dmehra/scholarchat/internal/history"
	"github.com/dmehra/scholarchat/internal/router"
)

func TestSearchTextNumbersPapers(t *testing.T) {
	t.Parallel()

	got := Text(router.SearchPerformed{
		Query: "federated learning",
		Papers: []arxiv.Paper{
			{ID: "paper_11111111", Title: "One", Year: 2021, Authors: []string{"A", "B", "C", "D"}},
			{ID: "paper_22222222", Title: "Two", Year: 2022, Authors: []string{"E"}},
		},
	})

	for _, want := range []string{
		"Found 2 papers",
		"1. One (2021)",
		"A, B, C et al.",
		"Paper ID: paper_11111111",
		"2. Two (2022)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestSearchTextEmptyResult(t *testing.T) {
	t.Parallel()

	got := Text(router.SearchPerformed{Query: "nonsense"})
	if !strings.Contains(got, "No papers found") {
		t.Fatalf("unexpected empty-result text: %s", got)
	}
}

func TestHistoryText(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	got := Text(router.HistoryListed{Entries: []history.Entry{
		{Intent: "search", Query: "find llms", Timestamp: ts},
	}})
	if !strings.Contains(got, "- [search] find llms (2026-03-01 10:30)") {
		t.Fatalf("unexpected history text: %s", got)
	}

	if got := Text(router.HistoryListed{}); !strings.Contains(got, "No history yet") {
		t.Fatalf("unexpected empty history text: %s", got)
	}
}

func TestUnrecognizedIncludesHelp(t *testing.T) {
	t.Parallel()

	got := Text(router.Unrecognized{})
	if !strings.Contains(got, "find papers about") {
		t.Fatalf("expected help text, got: %s", got)
	}
}

func TestErrorText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: details", router.ErrAmbiguousReference), "not sure which paper"},
		{fmt.Errorf("%w: 5 of 2", router.ErrPositionOutOfRange), "past the end"},
		{router.ErrEmptyMessage, "Say something"},
		{errors.New("network down"), "downstream"},
	}
	for _, tt := range tests {
		if got := ErrorText(tt.err); !strings.Contains(got, tt.want) {
			t.Fatalf("ErrorText(%v) = %q, want substring %q", tt.err, got, tt.want)
		}
	}
	if ErrorText(nil) != "" {
		t.Fatalf("nil error should render empty")
	}
}
