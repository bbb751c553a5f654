// Package sessioninfo exposes a tier's auth state as JSON for browser
// scripts:
//
//	GET /api/session        → student tier
//	GET /api/admin/session  → admin tier
//
//	{ "isLoading": false, "isAuthenticated": true, "user": { "id": 1, ... } }
//
// The handler never waits for the first auth check; while it runs the
// answer is {"isLoading": true, ...} and the caller polls again.
package sessioninfo

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/ugs-portal/internal/auth"
	"github.com/aanand-mishra/ugs-portal/internal/http/handlers/page"
	"github.com/aanand-mishra/ugs-portal/internal/utils/response"
)

func Get(sessions *auth.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _, err := page.Session(sessions, r)
		if err != nil {
			_ = response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		if err := response.WriteJSON(w, http.StatusOK, sess.State()); err != nil {
			slog.Error("cannot write session state", slog.String("error", err.Error()))
		}
	}
}
