// Package orgadmin serves the dashboard of organization admins: the exams
// of their organization and the dates those exams are sat on. The API
// scopes both lists to the caller's organization.
package orgadmin

import (
	"net/http"

	"github.com/aanand-mishra/ugs-portal/internal/api"
	"github.com/aanand-mishra/ugs-portal/internal/auth"
	"github.com/aanand-mishra/ugs-portal/internal/guard"
	"github.com/aanand-mishra/ugs-portal/internal/http/handlers/page"
	"github.com/aanand-mishra/ugs-portal/internal/types"
	"github.com/aanand-mishra/ugs-portal/internal/view"
)

type Deps struct {
	Sessions   *auth.Manager
	API        func(profile string) *api.Admin
	View       *view.Renderer
	SignInPath string
}

type DashboardData struct {
	Exams     []types.Exam
	ExamDates []types.ExamDate
}

// Dashboard handles GET /org-admin/dashboard.
func Dashboard(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := view.Page{Title: "Organization dashboard", Tier: auth.TierAdmin}
		if u, ok := guard.UserFrom(r.Context()); ok {
			p.User = &u
		}
		fail := func(err error) {
			page.Fail(w, r, d.View, d.Sessions, d.SignInPath, "orgadmin/dashboard", p, err)
		}

		_, id, err := page.Session(d.Sessions, r)
		if err != nil {
			fail(err)
			return
		}
		client := d.API(id)

		var data DashboardData
		if data.Exams, err = client.Exams(r.Context()); err != nil {
			fail(err)
			return
		}
		if data.ExamDates, err = client.ExamDates(r.Context()); err != nil {
			fail(err)
			return
		}
		p.Data = data
		d.View.Render(w, http.StatusOK, "orgadmin/dashboard", p)
	}
}
