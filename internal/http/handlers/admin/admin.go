// Package admin contains the handlers of the administrative tier: sign-in
// shared by super admins and org admins, and the super-admin pages that
// manage organizations and their admins.
package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/ugs-portal/internal/api"
	"github.com/aanand-mishra/ugs-portal/internal/auth"
	"github.com/aanand-mishra/ugs-portal/internal/guard"
	"github.com/aanand-mishra/ugs-portal/internal/http/handlers/page"
	"github.com/aanand-mishra/ugs-portal/internal/types"
	"github.com/aanand-mishra/ugs-portal/internal/view"
)

const (
	SignInPath       = "/admin/login"
	DashboardPath    = "/admin/dashboard"
	OrgDashboardPath = "/org-admin/dashboard"
	UnauthorizedPath = "/unauthorized"
)

type Deps struct {
	Sessions *auth.Manager
	API      func(profile string) *api.Admin
	View     *view.Renderer
}

// HomeFor is the landing page of an admin user.
func HomeFor(u types.User) string {
	switch u.Role {
	case types.RoleSuperAdmin:
		return DashboardPath
	case types.RoleOrgAdmin:
		return OrgDashboardPath
	default:
		return UnauthorizedPath
	}
}

func (d Deps) page(r *http.Request, title string) view.Page {
	p := view.Page{Title: title, Tier: auth.TierAdmin}
	if u, ok := guard.UserFrom(r.Context()); ok {
		p.User = &u
	}
	return p
}

func (d Deps) client(r *http.Request) (*api.Admin, error) {
	_, id, err := page.Session(d.Sessions, r)
	if err != nil {
		return nil, err
	}
	return d.API(id), nil
}

func (d Deps) fail(w http.ResponseWriter, r *http.Request, name string, p view.Page, err error) {
	page.Fail(w, r, d.View, d.Sessions, SignInPath, name, p, err)
}

func LoginForm(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.View.Render(w, http.StatusOK, "admin/login", d.page(r, "Administrator sign in"))
	}
}

// Login handles POST /admin/login and sends the user to the dashboard of
// their role.
func Login(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := types.Credentials{
			Email:    page.Form(r, "email"),
			Password: r.PostFormValue("password"),
		}
		p := d.page(r, "Administrator sign in")
		p.Form = creds

		sess, id, err := page.Session(d.Sessions, r)
		if err != nil {
			d.fail(w, r, "admin/login", p, err)
			return
		}
		client := d.API(id)

		user, err := sess.SignIn(r.Context(), func(ctx context.Context) (api.AuthResult, error) {
			return client.Login(ctx, creds)
		})
		if err != nil {
			d.fail(w, r, "admin/login", p, err)
			return
		}

		slog.Info("admin signed in",
			slog.Int64("id", user.ID),
			slog.String("role", user.Role))
		http.Redirect(w, r, HomeFor(user), http.StatusSeeOther)
	}
}

func Logout(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, id, err := page.Session(d.Sessions, r)
		if err == nil {
			if err := sess.SignOut(r.Context(), d.API(id).Logout); err != nil {
				slog.Warn("admin logout call failed", slog.String("error", err.Error()))
			}
		}
		http.Redirect(w, r, SignInPath, http.StatusSeeOther)
	}
}

// Dashboard handles GET /admin/dashboard (super admins).
func Dashboard(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := d.page(r, "Dashboard")
		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "admin/dashboard", p, err)
			return
		}
		stats, err := client.Dashboard(r.Context())
		if err != nil {
			d.fail(w, r, "admin/dashboard", p, err)
			return
		}
		p.Data = stats
		d.View.Render(w, http.StatusOK, "admin/dashboard", p)
	}
}
