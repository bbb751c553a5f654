// Package page holds what the page handlers of both tiers share: finding
// the caller's session, turning API failures into banners, and reading ids
// and numbers out of requests.
package page

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/ugs-portal/internal/api"
	"github.com/aanand-mishra/ugs-portal/internal/auth"
	"github.com/aanand-mishra/ugs-portal/internal/profile"
	"github.com/aanand-mishra/ugs-portal/internal/utils/response"
	"github.com/aanand-mishra/ugs-portal/internal/view"
)

var ErrNoProfile = errors.New("request has no browser profile")

// Session returns the tier session of the request's browser profile.
func Session(m *auth.Manager, r *http.Request) (*auth.Session, string, error) {
	id, ok := profile.FromContext(r.Context())
	if !ok {
		return nil, "", ErrNoProfile
	}
	return m.Session(r.Context(), id), id, nil
}

// Fail logs err and renders the page again with the error banner and any
// field errors. A 401 means the tier token died mid-session: the session
// is signed out and the visitor sent to signIn instead.
func Fail(w http.ResponseWriter, r *http.Request, v *view.Renderer, m *auth.Manager, signIn, name string, p view.Page, err error) {
	if api.IsStatus(err, http.StatusUnauthorized) && p.User != nil {
		if sess, _, serr := Session(m, r); serr == nil {
			if lerr := sess.Logout(r.Context()); lerr != nil {
				slog.Error("cannot clear expired session",
					slog.String("tier", m.Tier()),
					slog.String("error", lerr.Error()))
			}
		}
		slog.Info("token expired, signed out",
			slog.String("tier", m.Tier()),
			slog.String("page", name))
		http.Redirect(w, r, signIn, http.StatusSeeOther)
		return
	}

	msg, fields, status := response.Banner(err)
	slog.Warn("api call failed",
		slog.String("tier", m.Tier()),
		slog.String("page", name),
		slog.Int("status", status),
		slog.String("error", err.Error()))

	p.Error = msg
	p.Fields = fields
	v.Render(w, status, name, p)
}

// PathID parses the {id} URL parameter.
func PathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// FormInt parses an integer form field; empty or invalid values are 0 so
// validation reports them as missing.
func FormInt(r *http.Request, name string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue(name)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Form returns a trimmed form value. Passwords are read with r.PostFormValue
// directly so their spaces survive.
func Form(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostFormValue(name))
}
