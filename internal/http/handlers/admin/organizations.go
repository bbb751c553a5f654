package admin

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/ugs-portal/internal/http/handlers/page"
	"github.com/aanand-mishra/ugs-portal/internal/types"
)

const organizationsPath = "/admin/organizations"

// Notices carried across the redirect after a write.
var organizationNotices = map[string]string{
	"created": "Organization created.",
	"updated": "Organization updated.",
	"deleted": "Organization deleted.",
}

// Organizations handles GET /admin/organizations: one card per organization.
func Organizations(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := d.page(r, "Organizations")
		p.Notice = organizationNotices[r.URL.Query().Get("done")]

		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "admin/organizations", p, err)
			return
		}
		orgs, err := client.Organizations(r.Context())
		if err != nil {
			d.fail(w, r, "admin/organizations", p, err)
			return
		}
		p.Data = orgs
		d.View.Render(w, http.StatusOK, "admin/organizations", p)
	}
}

func NewOrganization(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := d.page(r, "New organization")
		p.Form = types.Organization{}
		d.View.Render(w, http.StatusOK, "admin/organization_form", p)
	}
}

func organizationForm(r *http.Request) types.Organization {
	return types.Organization{
		Name:        page.Form(r, "name"),
		Email:       page.Form(r, "email"),
		Phone:       page.Form(r, "phone"),
		Address:     page.Form(r, "address"),
		Description: page.Form(r, "description"),
	}
}

// CreateOrganization handles POST /admin/organizations.
func CreateOrganization(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org := organizationForm(r)
		p := d.page(r, "New organization")
		p.Form = org

		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "admin/organization_form", p, err)
			return
		}
		created, err := client.CreateOrganization(r.Context(), org)
		if err != nil {
			d.fail(w, r, "admin/organization_form", p, err)
			return
		}

		slog.Info("organization created", slog.Int64("id", created.ID))
		http.Redirect(w, r, organizationsPath+"?done=created", http.StatusSeeOther)
	}
}

// EditOrganization handles GET /admin/organizations/{id}/edit.
func EditOrganization(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := page.PathID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		p := d.page(r, "Edit organization")

		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "admin/organization_form", p, err)
			return
		}
		org, err := client.Organization(r.Context(), id)
		if err != nil {
			p.Form = types.Organization{ID: id}
			d.fail(w, r, "admin/organization_form", p, err)
			return
		}
		p.Form = org
		d.View.Render(w, http.StatusOK, "admin/organization_form", p)
	}
}

// UpdateOrganization handles POST /admin/organizations/{id}.
func UpdateOrganization(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := page.PathID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		org := organizationForm(r)
		org.ID = id
		p := d.page(r, "Edit organization")
		p.Form = org

		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "admin/organization_form", p, err)
			return
		}
		if _, err := client.UpdateOrganization(r.Context(), id, org); err != nil {
			d.fail(w, r, "admin/organization_form", p, err)
			return
		}

		slog.Info("organization updated", slog.Int64("id", id))
		http.Redirect(w, r, organizationsPath+"?done=updated", http.StatusSeeOther)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteOrganization handles POST /admin/organizations/{id}/delete.
//
// Issues DELETE /admin/organizations/{id} to the API and, on success,
// redirects (303) back to the list, which is fetched again.
// On failure the list is shown with the error banner.
// ─────────────────────────────────────────────────────────────────────────────
func DeleteOrganization(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := page.PathID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		p := d.page(r, "Organizations")

		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "admin/organizations", p, err)
			return
		}
		if err := client.DeleteOrganization(r.Context(), id); err != nil {
			if orgs, lerr := client.Organizations(r.Context()); lerr == nil {
				p.Data = orgs
			}
			d.fail(w, r, "admin/organizations", p, err)
			return
		}

		slog.Info("organization deleted", slog.Int64("id", id))
		http.Redirect(w, r, organizationsPath+"?done=deleted", http.StatusSeeOther)
	}
}
