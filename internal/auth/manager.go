package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aanand-mishra/ugs-portal/internal/profile"
)

// Tiers served by the portal.
const (
	TierStudent = "student"
	TierAdmin   = "admin"
)

// Dependencies are what a new session of one profile needs.
type Dependencies struct {
	Tokens   TokenStore
	Verifier Verifier
}

// Manager owns the sessions of one tier, one per browser profile. Only
// sessions that are loading or signed in are kept; a session that settles
// signed-out is dropped and rebuilt from local storage on the next request.
type Manager struct {
	tier    string
	factory func(profile string) Dependencies

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(tier string, factory func(profile string) Dependencies) *Manager {
	return &Manager{
		tier:     tier,
		factory:  factory,
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Tier() string { return m.tier }

// Session returns the profile's session, creating it on first use. A new
// session starts its one-time check in the background; the check outlives
// the request that triggered it. A profile issued by the request itself
// has no stored token: it gets a signed-out session that is only kept if
// it signs in.
func (m *Manager) Session(ctx context.Context, id string) *Session {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return s
	}
	deps := m.factory(id)
	s := NewSession(deps.Tokens, deps.Verifier)
	s.observe = func() { m.track(id, s) }

	if profile.Issued(ctx) {
		m.mu.Unlock()
		s.mu.Lock()
		s.settle(State{})
		s.mu.Unlock()
		return s
	}
	m.sessions[id] = s
	m.mu.Unlock()

	checkCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.CheckAuthStatus(checkCtx); err != nil {
			slog.Error("auth check failed",
				slog.String("tier", m.tier),
				slog.String("profile", id),
				slog.String("error", err.Error()))
		}
	}()
	return s
}

// track keeps s while it is signed in and drops it once it settles
// signed-out. The state is read under m.mu so the last caller wins.
func (m *Manager) track(id string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch st := s.State(); {
	case st.IsAuthenticated:
		m.sessions[id] = s
	case !st.IsLoading:
		if m.sessions[id] == s {
			delete(m.sessions, id)
		}
	}
}

// Len is the number of sessions held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Forget drops the profile's session; the next Session call starts over
// with a fresh check.
func (m *Manager) Forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
