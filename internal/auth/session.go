// Package auth holds the signed-in state of one tier (student or admin)
// for one browser profile.
//
// A Session starts out loading. Its first CheckAuthStatus settles it:
// without a stored token it becomes signed-out at once, with a token it
// asks the API who the token belongs to and either signs in or drops the
// token. Ready is closed when that first settlement happens, whichever of
// CheckAuthStatus, Login or Logout gets there first.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aanand-mishra/ugs-portal/internal/api"
	"github.com/aanand-mishra/ugs-portal/internal/types"
)

// ErrNoToken is returned by SignIn when the API accepted the credentials
// but handed back no token to keep.
var ErrNoToken = errors.New("auth: no token in login response")

// State is the observable part of a session.
type State struct {
	IsLoading       bool        `json:"isLoading"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            *types.User `json:"user"`
}

// Verifier resolves the stored token to its user ("whoami").
type Verifier interface {
	WhoAmI(ctx context.Context) (types.User, error)
}

// VerifierFunc adapts a plain function, such as (*api.Student).CurrentUser,
// to a Verifier.
type VerifierFunc func(ctx context.Context) (types.User, error)

func (f VerifierFunc) WhoAmI(ctx context.Context) (types.User, error) { return f(ctx) }

// TokenStore is the tier's token cell in the profile's local storage.
type TokenStore interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string) error
	Remove(ctx context.Context) error
}

type Session struct {
	tokens   TokenStore
	verifier Verifier

	mu    sync.Mutex
	state State
	// version counts Login/Logout calls so a slow first check cannot
	// overwrite a sign-in that happened while it was running.
	version uint64

	ready     chan struct{}
	readyOnce sync.Once

	// observe, when set, runs after every state change with s.mu released.
	observe func()
}

func NewSession(tokens TokenStore, verifier Verifier) *Session {
	return &Session{
		tokens:   tokens,
		verifier: verifier,
		state:    State{IsLoading: true},
		ready:    make(chan struct{}),
	}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Ready is closed once the session has settled for the first time.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

func (s *Session) notify() {
	if s.observe != nil {
		s.observe()
	}
}

func (s *Session) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// settle must be called with s.mu held.
func (s *Session) settle(st State) {
	s.state = st
	s.markReady()
}

// CheckAuthStatus verifies the stored token. A missing token settles the
// session as signed-out without any API call; a token the API does not
// accept (401, other HTTP error or network failure) is removed. Only
// local-storage failures are returned.
func (s *Session) CheckAuthStatus(ctx context.Context) error {
	defer s.notify()

	s.mu.Lock()
	version := s.version
	s.mu.Unlock()

	tok, ok, err := s.tokens.Get(ctx)
	if err != nil {
		s.mu.Lock()
		if s.version == version {
			s.settle(State{})
		}
		s.mu.Unlock()
		return fmt.Errorf("auth.CheckAuthStatus: %w", err)
	}
	if !ok || tok == "" {
		s.mu.Lock()
		if s.version == version {
			s.settle(State{})
		}
		s.mu.Unlock()
		return nil
	}

	user, verr := s.verifier.WhoAmI(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		// Login or Logout won the race; their state stands.
		return nil
	}
	if verr != nil {
		slog.Debug("stored token rejected", slog.String("error", verr.Error()))
		s.settle(State{})
		if err := s.tokens.Remove(ctx); err != nil {
			return fmt.Errorf("auth.CheckAuthStatus: remove token: %w", err)
		}
		return nil
	}
	s.settle(State{IsAuthenticated: true, User: &user})
	return nil
}

// Login marks the session as signed in as user and stores tok when it is
// not empty. The returned channel is closed once the new state is visible
// to every reader of the session.
func (s *Session) Login(ctx context.Context, user types.User, tok string) (<-chan struct{}, error) {
	defer s.notify()
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok != "" {
		if err := s.tokens.Set(ctx, tok); err != nil {
			return nil, fmt.Errorf("auth.Login: %w", err)
		}
	}
	s.version++
	s.settle(State{IsAuthenticated: true, User: &user})

	done := make(chan struct{})
	close(done)
	return done, nil
}

// Logout clears the user and removes the token. It does not call the API.
func (s *Session) Logout(ctx context.Context) error {
	defer s.notify()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	s.settle(State{})
	if err := s.tokens.Remove(ctx); err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}
	return nil
}

// SignIn runs login (an API login or register call) and signs the session
// in with its result.
func (s *Session) SignIn(ctx context.Context, login func(context.Context) (api.AuthResult, error)) (types.User, error) {
	res, err := login(ctx)
	if err != nil {
		return types.User{}, err
	}
	if res.Token == "" {
		return types.User{}, ErrNoToken
	}
	done, err := s.Login(ctx, res.User, res.Token)
	if err != nil {
		return types.User{}, err
	}
	<-done
	return res.User, nil
}

// SignOut calls the API logout and then clears the session. A 401 from
// the API means the token was already dead and counts as success. Other
// API failures are returned, but the local state is cleared regardless.
func (s *Session) SignOut(ctx context.Context, logout func(context.Context) error) error {
	err := logout(ctx)
	if api.IsStatus(err, http.StatusUnauthorized) {
		err = nil
	}
	if lerr := s.Logout(ctx); lerr != nil && err == nil {
		err = lerr
	}
	return err
}
