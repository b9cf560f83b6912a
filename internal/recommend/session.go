// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/mixtape/internal/metrics"
)

// Session is one user's working state: the current inputs and at most one
// CurrentRun. Changing the inputs clears the run.
type Session struct {
	ID string

	mu        sync.Mutex
	createdAt time.Time
	lastSeen  time.Time
	inputs    *Selection
	version   uint64
	run       *CurrentRun
}

// NewSession creates an empty session.
func NewSession(now time.Time) *Session {
	return &Session{
		ID:        uuid.New().String(),
		createdAt: now,
		lastSeen:  now,
	}
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createdAt
}

// SetInputs replaces the session's inputs. The current run is cleared, and
// true returned, only if sel differs from the previous inputs.
func (s *Session) SetInputs(sel Selection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inputs != nil && s.inputs.Equal(sel) {
		return false
	}
	s.inputs = &sel
	s.version++
	cleared := s.run != nil
	s.run = nil
	return cleared
}

// Inputs returns the current inputs and their version.
func (s *Session) Inputs() (Selection, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inputs == nil {
		return Selection{}, s.version, false
	}
	return *s.inputs, s.version, true
}

// CurrentRun returns the live run, or ErrNoRun.
func (s *Session) CurrentRun() (*CurrentRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return nil, ErrNoRun
	}
	return s.run, nil
}

// storeRun replaces the run if the inputs are still at version.
func (s *Session) storeRun(run *CurrentRun, version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		return false
	}
	s.run = run
	return true
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionStore holds live sessions and expires idle ones.
type SessionStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	maxSessions int
	now         func() time.Time
}

// NewSessionStore creates a store. A zero maxSessions means unbounded; a
// nil now defaults to time.Now.
func NewSessionStore(idleTimeout time.Duration, maxSessions int, now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		maxSessions: maxSessions,
		now:         now,
	}
}

// Create starts a new session.
func (st *SessionStore) Create() (*Session, error) {
	if st.maxSessions > 0 && st.Len() >= st.maxSessions {
		st.Sweep()
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		return nil, ErrTooManySessions
	}
	s := NewSession(st.now())
	st.sessions[s.ID] = s
	metrics.SessionsActive.Set(float64(len(st.sessions)))
	return s, nil
}

// Get returns the session with id and marks it active.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	now := st.now()
	if st.idleTimeout > 0 && s.idleSince(now) >= st.idleTimeout {
		st.Delete(id)
		return nil, ErrSessionNotFound
	}
	s.touch(now)
	return s, nil
}

// Delete ends a session. Unknown ids are ignored.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	metrics.SessionsActive.Set(float64(len(st.sessions)))
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes idle sessions and returns how many were removed.
func (st *SessionStore) Sweep() int {
	if st.idleTimeout <= 0 {
		return 0
	}
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.idleSince(now) >= st.idleTimeout {
			delete(st.sessions, id)
			removed++
		}
	}
	metrics.SessionsActive.Set(float64(len(st.sessions)))
	return removed
}

// SessionSweeper is a supervised service expiring idle sessions.
type SessionSweeper struct {
	store    *SessionStore
	interval time.Duration
	logger   zerolog.Logger
}

// NewSessionSweeper creates a sweeper. interval defaults to one minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSessionSweeper(store *SessionStore, interval time.Duration, logger zerolog.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("component", "session-sweeper").Logger(),
	}
}

// Serve implements suture.Service.
func (w *SessionSweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := w.store.Sweep(); n > 0 {
				w.logger.Debug().Int("expired", n).Int("active", w.store.Len()).Msg("expired idle sessions")
			}
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (w *SessionSweeper) String() string {
	return "session-sweeper"
}
