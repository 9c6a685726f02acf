package session

import (
	"testing"
	"time"

	"github.com/dmehra/scholarchat/internal/arxiv"
)

func TestSetSearchResultOverwrites(t *testing.T) {
	t.Parallel()

	sess := NewStore().GetOrCreate("s1")
	if _, ok := sess.LastResult(); ok {
		t.Fatalf("fresh session should have no result")
	}

	sess.SetSearchResult([]arxiv.Paper{{ID: "paper_aaaaaaaa", Title: "First"}})
	papers, ok := sess.LastResult()
	if !ok || len(papers) != 1 || papers[0].Title != "First" {
		t.Fatalf("unexpected result: %#v ok=%v", papers, ok)
	}

	sess.SetSelected(papers[0])
	if sess.Selected() == nil {
		t.Fatalf("expected selection to stick")
	}

	sess.SetSearchResult([]arxiv.Paper{{ID: "paper_bbbbbbbb", Title: "Second"}})
	papers, _ = sess.LastResult()
	if len(papers) != 1 || papers[0].Title != "Second" {
		t.Fatalf("expected newest result to win: %#v", papers)
	}
	if sess.Selected() != nil {
		t.Fatalf("new search should drop the previous selection")
	}
}

func TestEmptyResultStillCountsAsSearched(t *testing.T) {
	t.Parallel()

	sess := NewStore().GetOrCreate("s1")
	sess.SetSearchResult(nil)
	papers, ok := sess.LastResult()
	if !ok {
		t.Fatalf("empty search should still mark the session as searched")
	}
	if len(papers) != 0 {
		t.Fatalf("expected empty result, got %#v", papers)
	}
}

func TestPaperResolution(t *testing.T) {
	t.Parallel()

	sess := NewStore().GetOrCreate("s1")
	sess.SetSearchResult([]arxiv.Paper{
		{ID: "paper_11111111", Title: "One"},
		{ID: "paper_22222222", Title: "Two"},
	})

	if paper, ok := sess.PaperByID("paper_22222222"); !ok || paper.Title != "Two" {
		t.Fatalf("by id failed: %#v ok=%v", paper, ok)
	}
	if _, ok := sess.PaperByID("paper_missing0"); ok {
		t.Fatalf("unknown id should not resolve")
	}
	if paper, ok := sess.PaperAt(1); !ok || paper.Title != "One" {
		t.Fatalf("ordinal 1 failed: %#v ok=%v", paper, ok)
	}
	if _, ok := sess.PaperAt(3); ok {
		t.Fatalf("ordinal past end should not resolve")
	}
	if _, ok := sess.PaperAt(0); ok {
		t.Fatalf("ordinals are 1-indexed")
	}
}

func TestStoreGetOrCreateIsStable(t *testing.T) {
	t.Parallel()

	store := NewStore()
	first := store.GetOrCreate("abc")
	second := store.GetOrCreate("abc")
	if first != second {
		t.Fatalf("expected the same session back")
	}

	anon := store.GetOrCreate("")
	if anon.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if store.Get(anon.ID) != anon {
		t.Fatalf("generated session should be retrievable")
	}
}

func TestExpireSkipsBusySessions(t *testing.T) {
	t.Parallel()

	store := NewStore()
	busy := store.GetOrCreate("busy")
	busy.LastActive = time.Now().Add(-2 * time.Hour)
	busy.BeginDispatch()
	defer busy.EndDispatch()

	if removed := store.Expire(time.Now().Add(-time.Hour)); removed != 0 {
		t.Fatalf("a session mid-dispatch must not expire, removed %d", removed)
	}
	if store.Get("busy") == nil {
		t.Fatalf("busy session should survive the sweep")
	}
}

func TestExpireDropsIdleSessions(t *testing.T) {
	t.Parallel()

	store := NewStore()
	stale := store.GetOrCreate("stale")
	stale.LastActive = time.Now().Add(-2 * time.Hour)
	store.GetOrCreate("live")

	if removed := store.Expire(time.Now().Add(-time.Hour)); removed != 1 {
		t.Fatalf("expected 1 expired session, got %d", removed)
	}
	if store.Get("stale") != nil {
		t.Fatalf("stale session should be gone")
	}
	if store.Get("live") == nil {
		t.Fatalf("live session should remain")
	}
}
