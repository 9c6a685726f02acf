package history

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndListNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	queries := []string{"find transformers", "summarize the first paper", "history"}
	for i, q := range queries {
		err := store.Append(ctx, Entry{
			SessionID: "s1",
			Query:     q,
			Intent:    []string{"search", "summarize", "history"}[i],
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := store.List(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Query != "history" || entries[2].Query != "find transformers" {
		t.Fatalf("entries not newest-first: %#v", entries)
	}
	if entries[0].Timestamp.IsZero() {
		t.Fatalf("timestamp not recorded")
	}
}

func TestListIsScopedToSession(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, Entry{SessionID: "a", Query: "q1", Intent: "search"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, Entry{SessionID: "b", Query: "q2", Intent: "search"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, err := store.List(ctx, "a", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Query != "q1" {
		t.Fatalf("expected only session a entries, got %#v", entries)
	}
}

func TestListHonorsLimit(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, Entry{SessionID: "s", Query: "q", Intent: "search"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	entries, err := store.List(ctx, "s", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestStorageFailuresAreTyped(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	store.Close()
	ctx := context.Background()

	if err := store.Append(ctx, Entry{SessionID: "s", Query: "q", Intent: "search"}); !errors.Is(err, ErrHistoryUnavailable) {
		t.Fatalf("expected ErrHistoryUnavailable from Append, got %v", err)
	}
	if _, err := store.List(ctx, "s", 5); !errors.Is(err, ErrHistoryUnavailable) {
		t.Fatalf("expected ErrHistoryUnavailable from List, got %v", err)
	}
}

func TestConcurrentAppendsKeepSessionOrder(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, session := range []string{"left", "right"} {
		session := session
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				err := store.Append(ctx, Entry{
					SessionID: session,
					Query:     session,
					Intent:    "search",
					Summary:   string(rune('a' + i)),
				})
				if err != nil {
					t.Errorf("append: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	for _, session := range []string{"left", "right"} {
		entries, err := store.List(ctx, session, 50)
		if err != nil {
			t.Fatalf("list %s: %v", session, err)
		}
		if len(entries) != 20 {
			t.Fatalf("session %s lost entries: %d", session, len(entries))
		}
		// Newest-first means descending summaries.
		for i := 1; i < len(entries); i++ {
			if entries[i-1].Summary <= entries[i].Summary {
				t.Fatalf("session %s out of order at %d: %q then %q", session, i, entries[i-1].Summary, entries[i].Summary)
			}
		}
	}
}
