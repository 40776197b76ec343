package flow

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionStore keeps at most one live session per actor, in memory. Expiry is
// a pure time comparison at read time; the sweep loop only reclaims memory.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSessionStore creates a session store with the given inactivity timeout.
func NewSessionStore(timeout time.Duration, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		sessions: make(map[string]Session),
		timeout:  timeout,
		logger:   logger,
	}
}

// Timeout returns the configured inactivity timeout.
func (st *SessionStore) Timeout() time.Duration { return st.timeout }

// Get returns the actor's session, expired or not. Callers decide how to
// treat expiry so a late submission can get an expiry-specific answer.
func (st *SessionStore) Get(actorID string) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[actorID]
	return s, ok
}

// Put stores or replaces the actor's session.
func (st *SessionStore) Put(s Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ActorID] = s
}

// Delete discards the actor's session.
func (st *SessionStore) Delete(actorID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, actorID)
}

// Sweep removes sessions inactive for more than twice the timeout. The grace
// period keeps recently expired sessions findable so late interactions are
// answered with the expiry message rather than "no session".
func (st *SessionStore) Sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if now.Sub(s.LastActivity) > 2*st.timeout {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (st *SessionStore) Run(ctx context.Context) {
	ticker := time.NewTicker(st.timeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(time.Now()); n > 0 {
				st.logger.Debug("swept expired sessions", zap.Int("count", n))
			}
		}
	}
}
