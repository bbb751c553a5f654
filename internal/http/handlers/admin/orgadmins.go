package admin

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/ugs-portal/internal/api"
	"github.com/aanand-mishra/ugs-portal/internal/http/handlers/page"
	"github.com/aanand-mishra/ugs-portal/internal/types"
	"github.com/aanand-mishra/ugs-portal/internal/view"
)

const orgAdminsPath = "/admin/org-admins"

var orgAdminNotices = map[string]string{
	"created": "Organization admin created.",
	"updated": "Organization admin updated.",
	"deleted": "Organization admin deleted.",
}

// OrgAdminForm is the data of the org-admin create/edit page. ID is 0 when
// creating.
type OrgAdminForm struct {
	ID            int64
	Organizations []types.Organization
}

// OrgAdmins handles GET /admin/org-admins.
func OrgAdmins(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := d.page(r, "Organization admins")
		p.Notice = orgAdminNotices[r.URL.Query().Get("done")]

		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "admin/org_admins", p, err)
			return
		}
		admins, err := client.OrgAdmins(r.Context())
		if err != nil {
			d.fail(w, r, "admin/org_admins", p, err)
			return
		}
		p.Data = admins
		d.View.Render(w, http.StatusOK, "admin/org_admins", p)
	}
}

func orgAdminInput(r *http.Request) types.OrgAdminInput {
	return types.OrgAdminInput{
		Name:                 page.Form(r, "name"),
		Email:                page.Form(r, "email"),
		Password:             r.PostFormValue("password"),
		PasswordConfirmation: r.PostFormValue("password_confirmation"),
		OrganizationID:       page.FormInt(r, "organization_id"),
	}
}

// formPage fills the organization select. A failure to list organizations
// leaves it empty and shows the banner instead of failing the whole page.
func (d Deps) formPage(r *http.Request, client *api.Admin, id int64, title string) view.Page {
	p := d.page(r, title)
	data := OrgAdminForm{ID: id}
	orgs, err := client.Organizations(r.Context())
	if err != nil {
		slog.Warn("cannot list organizations", slog.String("error", err.Error()))
		p.Error = "Organizations could not be loaded."
	}
	data.Organizations = orgs
	p.Data = data
	return p
}

func NewOrgAdmin(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "admin/org_admins", d.page(r, "Organization admins"), err)
			return
		}
		p := d.formPage(r, client, 0, "New org admin")
		p.Form = types.OrgAdminInput{}
		d.View.Render(w, http.StatusOK, "admin/org_admin_form", p)
	}
}

// CreateOrgAdmin handles POST /admin/org-admins.
func CreateOrgAdmin(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "admin/org_admins", d.page(r, "Organization admins"), err)
			return
		}
		in := orgAdminInput(r)

		created, err := client.CreateOrgAdmin(r.Context(), in)
		if err != nil {
			p := d.formPage(r, client, 0, "New org admin")
			p.Form = types.OrgAdminInput{Name: in.Name, Email: in.Email, OrganizationID: in.OrganizationID}
			d.fail(w, r, "admin/org_admin_form", p, err)
			return
		}

		slog.Info("org admin created", slog.Int64("id", created.ID))
		http.Redirect(w, r, orgAdminsPath+"?done=created", http.StatusSeeOther)
	}
}

// EditOrgAdmin handles GET /admin/org-admins/{id}/edit.
func EditOrgAdmin(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := page.PathID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "admin/org_admins", d.page(r, "Organization admins"), err)
			return
		}

		p := d.formPage(r, client, id, "Edit org admin")
		oa, err := client.OrgAdmin(r.Context(), id)
		if err != nil {
			d.fail(w, r, "admin/org_admin_form", p, err)
			return
		}
		p.Form = types.OrgAdminInput{Name: oa.Name, Email: oa.Email, OrganizationID: oa.OrganizationID}
		d.View.Render(w, http.StatusOK, "admin/org_admin_form", p)
	}
}

// UpdateOrgAdmin handles POST /admin/org-admins/{id}. An empty password
// keeps the current one.
func UpdateOrgAdmin(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := page.PathID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "admin/org_admins", d.page(r, "Organization admins"), err)
			return
		}
		in := orgAdminInput(r)

		if _, err := client.UpdateOrgAdmin(r.Context(), id, in); err != nil {
			p := d.formPage(r, client, id, "Edit org admin")
			p.Form = types.OrgAdminInput{Name: in.Name, Email: in.Email, OrganizationID: in.OrganizationID}
			d.fail(w, r, "admin/org_admin_form", p, err)
			return
		}

		slog.Info("org admin updated", slog.Int64("id", id))
		http.Redirect(w, r, orgAdminsPath+"?done=updated", http.StatusSeeOther)
	}
}

// DeleteOrgAdmin handles POST /admin/org-admins/{id}/delete.
func DeleteOrgAdmin(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := page.PathID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		p := d.page(r, "Organization admins")
		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "admin/org_admins", p, err)
			return
		}
		if err := client.DeleteOrgAdmin(r.Context(), id); err != nil {
			if admins, lerr := client.OrgAdmins(r.Context()); lerr == nil {
				p.Data = admins
			}
			d.fail(w, r, "admin/org_admins", p, err)
			return
		}

		slog.Info("org admin deleted", slog.Int64("id", id))
		http.Redirect(w, r, orgAdminsPath+"?done=deleted", http.StatusSeeOther)
	}
}
