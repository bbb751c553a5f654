// Package student contains the HTTP handlers of the student pages.
//
// Every handler is built by a factory that receives its dependencies once
// at start-up and returns the http.HandlerFunc the router calls on every
// request:
//
//	r.Get("/exams", student.Exams(deps))
//
// Pages call the exam API on request, keep their error in a banner and
// re-render the form with field errors next to the inputs.
package student

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
	SignInPath = "/login"
	HomePath   = "/exams"
)

// Deps are shared by all student handlers.
type Deps struct {
	Sessions *auth.Manager
	// API returns the student client bound to a browser profile's token.
	API  func(profile string) *api.Student
	View *view.Renderer
}

func (d Deps) page(r *http.Request, title string) view.Page {
	p := view.Page{Title: title, Tier: auth.TierStudent}
	if u, ok := guard.UserFrom(r.Context()); ok {
		p.User = &u
	}
	return p
}

func (d Deps) client(r *http.Request) (*api.Student, error) {
	_, id, err := page.Session(d.Sessions, r)
	if err != nil {
		return nil, err
	}
	return d.API(id), nil
}

func (d Deps) fail(w http.ResponseWriter, r *http.Request, name string, p view.Page, err error) {
	page.Fail(w, r, d.View, d.Sessions, SignInPath, name, p, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// LoginForm handles GET /login.
// ─────────────────────────────────────────────────────────────────────────────
func LoginForm(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.View.Render(w, http.StatusOK, "student/login", d.page(r, "Sign in"))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Login handles POST /login.
//
// On success the token is stored in the profile, the session is signed in
// and the student lands on the exam list (303). On failure the form comes
// back with the API's message, e.g. 401 "Invalid credentials".
// ─────────────────────────────────────────────────────────────────────────────
func Login(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := types.Credentials{
			Email:    page.Form(r, "email"),
			Password: r.PostFormValue("password"),
		}
		p := d.page(r, "Sign in")
		p.Form = creds

		sess, id, err := page.Session(d.Sessions, r)
		if err != nil {
			d.fail(w, r, "student/login", p, err)
			return
		}
		client := d.API(id)

		user, err := sess.SignIn(r.Context(), func(ctx context.Context) (api.AuthResult, error) {
			return client.Login(ctx, creds)
		})
		if err != nil {
			d.fail(w, r, "student/login", p, err)
			return
		}

		slog.Info("student signed in", slog.Int64("id", user.ID))
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
	}
}

func RegisterForm(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.View.Render(w, http.StatusOK, "student/register", d.page(r, "Register"))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Register handles POST /register. A successful registration signs the
// student in straight away, exactly like Login.
// ─────────────────────────────────────────────────────────────────────────────
func Register(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := types.Registration{
			Name:                 page.Form(r, "name"),
			Email:                page.Form(r, "email"),
			Phone:                page.Form(r, "phone"),
			Password:             r.PostFormValue("password"),
			PasswordConfirmation: r.PostFormValue("password_confirmation"),
		}
		p := d.page(r, "Register")
		p.Form = types.Registration{Name: reg.Name, Email: reg.Email, Phone: reg.Phone}

		sess, id, err := page.Session(d.Sessions, r)
		if err != nil {
			d.fail(w, r, "student/register", p, err)
			return
		}
		client := d.API(id)

		user, err := sess.SignIn(r.Context(), func(ctx context.Context) (api.AuthResult, error) {
			return client.Register(ctx, reg)
		})
		if err != nil {
			d.fail(w, r, "student/register", p, err)
			return
		}

		slog.Info("student registered", slog.Int64("id", user.ID))
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Logout handles POST /logout. The API is told first; whatever it answers,
// the local session is cleared and the visitor goes back to sign-in.
// ─────────────────────────────────────────────────────────────────────────────
func Logout(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, id, err := page.Session(d.Sessions, r)
		if err == nil {
			if err := sess.SignOut(r.Context(), d.API(id).Logout); err != nil {
				slog.Warn("logout call failed", slog.String("error", err.Error()))
			}
		}
		http.Redirect(w, r, SignInPath, http.StatusSeeOther)
	}
}

// Exams handles GET /exams.
func Exams(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := d.page(r, "Exams")
		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "student/exams", p, err)
			return
		}
		exams, err := client.Exams(r.Context())
		if err != nil {
			d.fail(w, r, "student/exams", p, err)
			return
		}
		p.Data = exams
		d.View.Render(w, http.StatusOK, "student/exams", p)
	}
}

// MyExams handles GET /my-exams: registrations and published results.
func MyExams(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := d.page(r, "My results")
		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "student/my_exams", p, err)
			return
		}
		mine, err := client.MyExams(r.Context())
		if err != nil {
			d.fail(w, r, "student/my_exams", p, err)
			return
		}
		p.Data = mine
		d.View.Render(w, http.StatusOK, "student/my_exams", p)
	}
}

// Notifications handles GET /notifications.
func Notifications(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := d.page(r, "Notifications")
		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "student/notifications", p, err)
			return
		}
		items, err := client.Announcements(r.Context())
		if err != nil {
			d.fail(w, r, "student/notifications", p, err)
			return
		}
		p.Data = items
		d.View.Render(w, http.StatusOK, "student/notifications", p)
	}
}
