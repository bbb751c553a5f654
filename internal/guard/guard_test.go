package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aanand-mishra/ugs-portal/internal/api"
	"github.com/aanand-mishra/ugs-portal/internal/auth"
	"github.com/aanand-mishra/ugs-portal/internal/profile"
	"github.com/aanand-mishra/ugs-portal/internal/storage/memory"
	"github.com/aanand-mishra/ugs-portal/internal/token"
	"github.com/aanand-mishra/ugs-portal/internal/types"
)

type harness struct {
	backend *memory.Memory
	release chan struct{}
	user    types.User
	reject  bool
}

func (h *harness) manager() *auth.Manager {
	return auth.NewManager(auth.TierAdmin, func(p string) auth.Dependencies {
		return auth.Dependencies{
			Tokens: token.NewStore(h.backend, p, token.AdminKey),
			Verifier: auth.VerifierFunc(func(context.Context) (types.User, error) {
				if h.release != nil {
					<-h.release
				}
				if h.reject {
					return types.User{}, &api.Error{Status: http.StatusUnauthorized}
				}
				return h.user, nil
			}),
		}
	})
}

func request(profileID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/org-admin/dashboard", nil)
	return req.WithContext(profile.NewContext(req.Context(), profileID))
}

func protected(rendered *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*rendered = true
		u, _ := UserFrom(r.Context())
		_, _ = w.Write([]byte("hello " + u.Name))
	})
}

var orgAdminOnly = Options{
	Wait:             time.Second,
	RedirectTo:       "/admin/login",
	Roles:            []string{types.RoleOrgAdmin},
	UnauthorizedPath: "/unauthorized",
	Loading: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("loading placeholder"))
	},
}

func TestLoadingPlaceholderUntilCheckSettles(t *testing.T) {
	h := &harness{backend: memory.New(), release: make(chan struct{}), user: types.User{Name: "A", Role: types.RoleOrgAdmin}}
	_ = h.backend.SetItem(context.Background(), "p1", token.AdminKey, "t1")
	m := h.manager()

	opts := orgAdminOnly
	opts.Wait = 20 * time.Millisecond
	rendered := false
	handler := Require(m, opts)(protected(&rendered))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("p1"))
	if rec.Body.String() != "loading placeholder" {
		t.Fatalf("expected loading placeholder, got %q", rec.Body.String())
	}
	if rendered {
		t.Fatalf("protected handler ran before the auth check settled")
	}

	close(h.release)
	<-m.Session(context.Background(), "p1").Ready()

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, request("p1"))
	if rec.Code != http.StatusOK || rec.Body.String() != "hello A" {
		t.Fatalf("expected protected page, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRedirectsSignedOutVisitor(t *testing.T) {
	h := &harness{backend: memory.New()}
	rendered := false
	handler := Require(h.manager(), orgAdminOnly)(protected(&rendered))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("p1"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect to /admin/login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if rendered {
		t.Fatalf("protected handler must not run")
	}
}

func TestRedirectsRejectedToken(t *testing.T) {
	h := &harness{backend: memory.New(), reject: true}
	_ = h.backend.SetItem(context.Background(), "p1", token.AdminKey, "stale")
	rendered := false
	handler := Require(h.manager(), orgAdminOnly)(protected(&rendered))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("p1"))
	if rec.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect to /admin/login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, ok, _ := h.backend.GetItem(context.Background(), "p1", token.AdminKey); ok {
		t.Fatalf("rejected token must be removed")
	}
}

func TestRoleMismatchGoesToUnauthorized(t *testing.T) {
	h := &harness{backend: memory.New(), user: types.User{Name: "Root", Role: types.RoleSuperAdmin}}
	_ = h.backend.SetItem(context.Background(), "p1", token.AdminKey, "t1")
	rendered := false
	handler := Require(h.manager(), orgAdminOnly)(protected(&rendered))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("p1"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/unauthorized" {
		t.Fatalf("expected redirect to /unauthorized, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if rendered {
		t.Fatalf("protected handler must not run")
	}
}

func TestNoProfileRedirects(t *testing.T) {
	h := &harness{backend: memory.New()}
	rendered := false
	handler := Require(h.manager(), orgAdminOnly)(protected(&rendered))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusSeeOther || rendered {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
}

func TestRedirectIfAuthenticated(t *testing.T) {
	h := &harness{backend: memory.New(), user: types.User{Role: types.RoleOrgAdmin}}
	_ = h.backend.SetItem(context.Background(), "p1", token.AdminKey, "t1")
	m := h.manager()
	to := func(u types.User) string { return "/dash/" + u.Role }

	login := RedirectIfAuthenticated(m, time.Second, to)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("login form"))
	}))

	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, request("p1"))
	if rec.Header().Get("Location") != "/dash/org_admin" {
		t.Fatalf("expected redirect for signed-in user, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	login.ServeHTTP(rec, request("p2"))
	if rec.Body.String() != "login form" {
		t.Fatalf("signed-out visitor must see the form, got %q", rec.Body.String())
	}
}
