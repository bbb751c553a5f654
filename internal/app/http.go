package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aanand-mishra/ugs-portal/internal/api"
	"github.com/aanand-mishra/ugs-portal/internal/auth"
	"github.com/aanand-mishra/ugs-portal/internal/guard"
	"github.com/aanand-mishra/ugs-portal/internal/http/handlers/admin"
	"github.com/aanand-mishra/ugs-portal/internal/http/handlers/orgadmin"
	"github.com/aanand-mishra/ugs-portal/internal/http/handlers/sessioninfo"
	"github.com/aanand-mishra/ugs-portal/internal/http/handlers/student"
	"github.com/aanand-mishra/ugs-portal/internal/profile"
	"github.com/aanand-mishra/ugs-portal/internal/storage"
	"github.com/aanand-mishra/ugs-portal/internal/token"
	"github.com/aanand-mishra/ugs-portal/internal/types"
	"github.com/aanand-mishra/ugs-portal/internal/view"
)

// Settings are the parts of the config the router needs.
type Settings struct {
	StudentBaseURL string
	AdminBaseURL   string
	HTTPClient     *http.Client
	SecureCookie   bool
	GuardWait      time.Duration
}

// Portal is the wired router plus the per-tier session managers.
type Portal struct {
	Router   chi.Router
	Students *auth.Manager
	Admins   *auth.Manager
}

// NewPortal wires sessions, API clients and pages on top of store.
func NewPortal(store storage.Storage, s Settings, views *view.Renderer) *Portal {
	studentAPI := func(p string) *api.Student {
		return api.NewStudent(s.StudentBaseURL, s.HTTPClient, token.NewStore(store, p, token.StudentKey))
	}
	adminAPI := func(p string) *api.Admin {
		return api.NewAdmin(s.AdminBaseURL, s.HTTPClient, token.NewStore(store, p, token.AdminKey))
	}

	students := auth.NewManager(auth.TierStudent, func(p string) auth.Dependencies {
		return auth.Dependencies{
			Tokens:   token.NewStore(store, p, token.StudentKey),
			Verifier: auth.VerifierFunc(studentAPI(p).CurrentUser),
		}
	})
	admins := auth.NewManager(auth.TierAdmin, func(p string) auth.Dependencies {
		return auth.Dependencies{
			Tokens:   token.NewStore(store, p, token.AdminKey),
			Verifier: auth.VerifierFunc(adminAPI(p).CurrentUser),
		}
	})

	sd := student.Deps{Sessions: students, API: studentAPI, View: views}
	ad := admin.Deps{Sessions: admins, API: adminAPI, View: views}
	od := orgadmin.Deps{Sessions: admins, API: adminAPI, View: views, SignInPath: admin.SignInPath}

	loading := func(w http.ResponseWriter, r *http.Request) {
		views.Render(w, http.StatusOK, "loading", view.Page{Title: "Loading", Refresh: 1})
	}
	studentOnly := guard.Require(students, guard.Options{
		Wait:       s.GuardWait,
		RedirectTo: student.SignInPath,
		Loading:    loading,
	})
	superAdminOnly := guard.Require(admins, guard.Options{
		Wait:             s.GuardWait,
		RedirectTo:       admin.SignInPath,
		Roles:            []string{types.RoleSuperAdmin},
		UnauthorizedPath: admin.UnauthorizedPath,
		Loading:          loading,
	})
	orgAdminOnly := guard.Require(admins, guard.Options{
		Wait:             s.GuardWait,
		RedirectTo:       admin.SignInPath,
		Roles:            []string{types.RoleOrgAdmin},
		UnauthorizedPath: admin.UnauthorizedPath,
		Loading:          loading,
	})
	studentGuest := guard.RedirectIfAuthenticated(students, s.GuardWait, func(types.User) string { return student.HomePath })
	adminGuest := guard.RedirectIfAuthenticated(admins, s.GuardWait, admin.HomeFor)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(profile.Middleware(profile.CookieOptions{Secure: s.SecureCookie}))

	r.Handle("/static/*", view.Static())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		views.Render(w, http.StatusOK, "home", view.Page{})
	})
	r.Get("/unauthorized", func(w http.ResponseWriter, r *http.Request) {
		views.Render(w, http.StatusForbidden, "unauthorized", view.Page{Title: "Unauthorized"})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		views.Render(w, http.StatusNotFound, "not_found", view.Page{Title: "Not found"})
	})

	// Session state for browser scripts.
	r.Get("/api/session", sessioninfo.Get(students))
	r.Get("/api/admin/session", sessioninfo.Get(admins))

	// Student tier.
	r.With(studentGuest).Get("/login", student.LoginForm(sd))
	r.Post("/login", student.Login(sd))
	r.With(studentGuest).Get("/register", student.RegisterForm(sd))
	r.Post("/register", student.Register(sd))
	r.Post("/logout", student.Logout(sd))
	r.With(studentOnly).Get("/exams", student.Exams(sd))
	r.With(studentOnly).Get("/my-exams", student.MyExams(sd))
	r.With(studentOnly).Get("/notifications", student.Notifications(sd))
	r.With(studentOnly).Get("/profile", student.Profile(sd))
	r.With(studentOnly).Post("/profile", student.UpdateProfile(sd))
	r.With(studentOnly).Post("/profile/password", student.ChangePassword(sd))
	r.With(studentOnly).Get("/payment", student.PaymentForm(sd))
	r.With(studentOnly).Post("/payment", student.VerifyPayment(sd))

	// Admin tier.
	r.With(adminGuest).Get("/admin/login", admin.LoginForm(ad))
	r.Post("/admin/login", admin.Login(ad))
	r.Post("/admin/logout", admin.Logout(ad))
	r.With(superAdminOnly).Get("/admin/dashboard", admin.Dashboard(ad))
	r.With(superAdminOnly).Get("/admin/organizations", admin.Organizations(ad))
	r.With(superAdminOnly).Get("/admin/organizations/new", admin.NewOrganization(ad))
	r.With(superAdminOnly).Post("/admin/organizations", admin.CreateOrganization(ad))
	r.With(superAdminOnly).Get("/admin/organizations/{id}/edit", admin.EditOrganization(ad))
	r.With(superAdminOnly).Post("/admin/organizations/{id}", admin.UpdateOrganization(ad))
	r.With(superAdminOnly).Post("/admin/organizations/{id}/delete", admin.DeleteOrganization(ad))
	r.With(superAdminOnly).Get("/admin/org-admins", admin.OrgAdmins(ad))
	r.With(superAdminOnly).Get("/admin/org-admins/new", admin.NewOrgAdmin(ad))
	r.With(superAdminOnly).Post("/admin/org-admins", admin.CreateOrgAdmin(ad))
	r.With(superAdminOnly).Get("/admin/org-admins/{id}/edit", admin.EditOrgAdmin(ad))
	r.With(superAdminOnly).Post("/admin/org-admins/{id}", admin.UpdateOrgAdmin(ad))
	r.With(superAdminOnly).Post("/admin/org-admins/{id}/delete", admin.DeleteOrgAdmin(ad))

	// Org-admin tier.
	r.With(orgAdminOnly).Get("/org-admin/dashboard", orgadmin.Dashboard(od))

	return &Portal{Router: r, Students: students, Admins: admins}
}
