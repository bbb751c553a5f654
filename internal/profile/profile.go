// Package profile identifies the browser behind a request. Each browser
// gets a random id in a long-lived cookie; that id is the namespace of its
// local storage and of its auth sessions.
package profile

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const CookieName = "ugs_profile"

// cookieLifetime keeps the profile, and with it any stored token, across
// browser restarts.
const cookieLifetime = 365 * 24 * time.Hour

type ctxKey struct{}

type ctxValue struct {
	id     string
	issued bool
}

// CookieOptions defines how the profile cookie is issued.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if !o.HttpOnly {
		o.HttpOnly = true
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// FromRequest returns the request's profile id. A browser without a valid
// profile cookie is given a new one.
func FromRequest(w http.ResponseWriter, r *http.Request, opts CookieOptions) string {
	id, _ := resolve(w, r, opts)
	return id
}

// resolve also reports whether the id was issued by this request.
func resolve(w http.ResponseWriter, r *http.Request, opts CookieOptions) (string, bool) {
	if c, err := r.Cookie(CookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String(), false
		}
	}

	id := uuid.NewString()
	opts = opts.normalize()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     opts.Path,
		Expires:  time.Now().Add(cookieLifetime),
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
	return id, true
}

// Middleware resolves the profile once per request and stores it in the
// request context.
func Middleware(opts CookieOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, issued := resolve(w, r, opts)
			ctx := NewContext(r.Context(), id)
			if issued {
				ctx = NewIssuedContext(r.Context(), id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewContext stores an existing profile id in ctx.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ctxValue{id: id})
}

// FromContext returns the profile stored by Middleware.
func FromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(ctxValue)
	return v.id, ok && v.id != ""
}

// NewIssuedContext stores a profile id created by the current request.
func NewIssuedContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ctxValue{id: id, issued: true})
}

// Issued reports whether the profile in ctx was created by the current
// request. Such a browser has nothing in local storage yet.
func Issued(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKey{}).(ctxValue)
	return v.issued
}
