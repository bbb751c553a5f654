// Package guard protects pages behind a tier's auth session.
//
// A guarded request waits a short while for the profile's first auth check.
// If the check is still running the visitor gets the loading placeholder
// (which reloads itself); the protected handler never runs before the
// check has settled.
package guard

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/aanand-mishra/ugs-portal/internal/auth"
	"github.com/aanand-mishra/ugs-portal/internal/profile"
	"github.com/aanand-mishra/ugs-portal/internal/types"
)

// Sessions is implemented by *auth.Manager.
type Sessions interface {
	Session(ctx context.Context, profile string) *auth.Session
}

type Options struct {
	// Wait bounds how long a request blocks on the first auth check.
	Wait time.Duration
	// RedirectTo is where signed-out visitors are sent.
	RedirectTo string
	// Roles, when not empty, restricts the page to users with one of them.
	Roles []string
	// UnauthorizedPath is where signed-in users with the wrong role go.
	UnauthorizedPath string
	// Loading writes the placeholder page.
	Loading http.HandlerFunc
}

type ctxKey struct{}

// UserFrom returns the signed-in user placed in the context by Require.
func UserFrom(ctx context.Context) (types.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(types.User)
	return u, ok
}

func WithUser(ctx context.Context, u types.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// settled waits up to wait for the session's first check and reports
// whether it finished.
func settled(ctx context.Context, s *auth.Session, wait time.Duration) bool {
	select {
	case <-s.Ready():
		return true
	default:
	}
	if wait <= 0 {
		return false
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-s.Ready():
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Require lets the request through only for a signed-in user of the tier
// (and, with Options.Roles, of an allowed role).
func Require(sessions Sessions, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := profile.FromContext(r.Context())
			if !ok {
				http.Redirect(w, r, opts.RedirectTo, http.StatusSeeOther)
				return
			}

			sess := sessions.Session(r.Context(), id)
			if !settled(r.Context(), sess, opts.Wait) {
				opts.loading(w, r)
				return
			}

			st := sess.State()
			if st.IsLoading {
				opts.loading(w, r)
				return
			}
			if !st.IsAuthenticated || st.User == nil {
				http.Redirect(w, r, opts.RedirectTo, http.StatusSeeOther)
				return
			}
			if len(opts.Roles) > 0 && !slices.Contains(opts.Roles, st.User.Role) {
				slog.Info("role not allowed",
					slog.String("path", r.URL.Path),
					slog.String("role", st.User.Role))
				http.Redirect(w, r, opts.UnauthorizedPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), *st.User)))
		})
	}
}

func (o Options) loading(w http.ResponseWriter, r *http.Request) {
	if o.Loading != nil {
		o.Loading(w, r)
		return
	}
	w.Header().Set("Refresh", "1")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Loading..."))
}

// RedirectIfAuthenticated sends signed-in users away from sign-in and
// register pages. to picks the destination for the user.
func RedirectIfAuthenticated(sessions Sessions, wait time.Duration, to func(types.User) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := profile.FromContext(r.Context()); ok {
				sess := sessions.Session(r.Context(), id)
				if settled(r.Context(), sess, wait) {
					if st := sess.State(); st.IsAuthenticated && st.User != nil {
						http.Redirect(w, r, to(*st.User), http.StatusSeeOther)
						return
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
