package auth

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aanand-mishra/ugs-portal/internal/profile"
	"github.com/aanand-mishra/ugs-portal/internal/storage/memory"
	"github.com/aanand-mishra/ugs-portal/internal/token"
	"github.com/aanand-mishra/ugs-portal/internal/types"
)

func TestManagerChecksOncePerProfile(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()
	_ = backend.SetItem(ctx, "p1", token.StudentKey, "tok")

	var checks int32
	m := NewManager(TierStudent, func(profile string) Dependencies {
		return Dependencies{
			Tokens: token.NewStore(backend, profile, token.StudentKey),
			Verifier: VerifierFunc(func(context.Context) (types.User, error) {
				atomic.AddInt32(&checks, 1)
				return types.User{ID: 1, Name: "Stu"}, nil
			}),
		}
	})

	reqCtx, cancel := context.WithCancel(ctx)
	s := m.Session(reqCtx, "p1")
	cancel() // the check must outlive the request

	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatalf("session never settled")
	}
	if st := s.State(); !st.IsAuthenticated || st.User.Name != "Stu" {
		t.Fatalf("unexpected state %+v", st)
	}

	if again := m.Session(ctx, "p1"); again != s {
		t.Fatalf("expected the same session for the same profile")
	}
	if n := atomic.LoadInt32(&checks); n != 1 {
		t.Fatalf("expected one check, got %d", n)
	}

	other := m.Session(ctx, "p2")
	<-other.Ready()
	if other.State().IsAuthenticated {
		t.Fatalf("profile p2 has no token and must be signed out")
	}

	m.Forget("p1")
	if fresh := m.Session(ctx, "p1"); fresh == s {
		t.Fatalf("Forget must drop the session")
	}
}

// waitLen polls until m holds want sessions; eviction runs just after the
// session's Ready channel closes.
func waitLen(t *testing.T, m *Manager, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.Len() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d sessions held, got %d", want, m.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newCountingManager(backend *memory.Memory, checks *int32) *Manager {
	return NewManager(TierAdmin, func(p string) Dependencies {
		return Dependencies{
			Tokens: token.NewStore(backend, p, token.AdminKey),
			Verifier: VerifierFunc(func(context.Context) (types.User, error) {
				atomic.AddInt32(checks, 1)
				return types.User{ID: 2, Role: types.RoleOrgAdmin}, nil
			}),
		}
	})
}

func TestManagerSkipsIssuedProfiles(t *testing.T) {
	var checks int32
	m := newCountingManager(memory.New(), &checks)

	// A browser without a profile cookie gets a new id on every request.
	for i := 0; i < 100; i++ {
		ctx := profile.NewIssuedContext(context.Background(), fmt.Sprintf("new-%d", i))
		s := m.Session(ctx, fmt.Sprintf("new-%d", i))
		select {
		case <-s.Ready():
		default:
			t.Fatalf("a session for an issued profile must be settled at once")
		}
		if st := s.State(); st.IsLoading || st.IsAuthenticated {
			t.Fatalf("unexpected state %+v", st)
		}
	}
	if n := m.Len(); n != 0 {
		t.Fatalf("expected no sessions held, got %d", n)
	}
	if n := atomic.LoadInt32(&checks); n != 0 {
		t.Fatalf("expected no checks, got %d", n)
	}

	// Signing in keeps the session.
	ctx := profile.NewIssuedContext(context.Background(), "fresh")
	s := m.Session(ctx, "fresh")
	if _, err := s.Login(ctx, types.User{ID: 2, Role: types.RoleOrgAdmin}, "t1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := m.Session(context.Background(), "fresh"); got != s {
		t.Fatalf("a signed-in session must be kept")
	}
}

func TestManagerDropsSignedOutSessions(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()
	_ = backend.SetItem(ctx, "p1", token.AdminKey, "tok")

	var checks int32
	m := newCountingManager(backend, &checks)

	anon := m.Session(ctx, "anon")
	<-anon.Ready()
	s := m.Session(ctx, "p1")
	<-s.Ready()
	waitLen(t, m, 1)

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	waitLen(t, m, 0)
	if again := m.Session(ctx, "p1"); again == s {
		t.Fatalf("a signed-out session must be rebuilt")
	}
}
