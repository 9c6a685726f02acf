// Package session holds the per-conversation state the router reads
// and mutates. Mutators are called under the session's dispatch lock,
// which serializes message handling; the store only guards the session
// map itself.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra/scholarchat/internal/arxiv"
)

// Session tracks the most recent search result and the paper the user
// last referenced. At most one search result is held at a time; a new
// search overwrites the previous one.
type Session struct {
	ID         string
	StartedAt  time.Time
	LastActive time.Time

	dispatch   sync.Mutex
	lastResult []arxiv.Paper
	hasResult  bool
	selected   *arxiv.Paper
}

// BeginDispatch blocks until any in-flight dispatch for this session
// completes. One message is handled at a time per session; callers
// must pair it with EndDispatch.
func (s *Session) BeginDispatch() {
	s.dispatch.Lock()
}

// EndDispatch releases the slot taken by BeginDispatch.
func (s *Session) EndDispatch() {
	s.dispatch.Unlock()
}

// SetSearchResult replaces the session's search result. An empty slice
// is a valid result: the session still counts as having searched.
func (s *Session) SetSearchResult(papers []arxiv.Paper) {
	s.lastResult = append([]arxiv.Paper(nil), papers...)
	s.hasResult = true
	s.selected = nil
	s.LastActive = time.Now()
}

// LastResult returns the papers from the most recent search and whether
// a search has happened at all.
func (s *Session) LastResult() ([]arxiv.Paper, bool) {
	return s.lastResult, s.hasResult
}

// SetSelected marks the paper the user last summarized or downloaded.
func (s *Session) SetSelected(paper arxiv.Paper) {
	copied := paper
	s.selected = &copied
	s.LastActive = time.Now()
}

// Selected returns the last referenced paper, if any.
func (s *Session) Selected() *arxiv.Paper {
	return s.selected
}

// PaperByID resolves a paper handle against the current search result.
func (s *Session) PaperByID(id string) (arxiv.Paper, bool) {
	for _, paper := range s.lastResult {
		if paper.ID == id {
			return paper, true
		}
	}
	return arxiv.Paper{}, false
}

// PaperAt resolves a 1-indexed ordinal against the current search result.
func (s *Session) PaperAt(ordinal int) (arxiv.Paper, bool) {
	if ordinal < 1 || ordinal > len(s.lastResult) {
		return arxiv.Paper{}, false
	}
	return s.lastResult[ordinal-1], true
}

// ResultCount reports how many papers the last search returned.
func (s *Session) ResultCount() int {
	return len(s.lastResult)
}

// Clear drops all conversational state but keeps the session alive.
func (s *Session) Clear() {
	s.lastResult = nil
	s.hasResult = false
	s.selected = nil
	s.LastActive = time.Now()
}

// Store maps session identifiers to live sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating it if unknown. An
// empty id gets a fresh UUID.
func (st *Store) GetOrCreate(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if sess, ok := st.sessions[id]; ok {
		return sess
	}
	now := time.Now()
	sess := &Session{ID: id, StartedAt: now, LastActive: now}
	st.sessions[id] = sess
	return sess
}

// Get returns an existing session or nil.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

// Expire drops sessions that have been idle since before the cutoff
// and reports how many were removed. Sessions with a dispatch in
// flight are active and are left alone.
func (st *Store) Expire(before time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, sess := range st.sessions {
		if !sess.dispatch.TryLock() {
			continue
		}
		idle := sess.LastActive.Before(before)
		sess.dispatch.Unlock()
		if idle {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
