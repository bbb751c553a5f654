package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/aanand-mishra/ugs-portal/internal/types"
)

// Admin calls the /admin endpoints shared by super admins and org admins.
type Admin struct {
	c      *Client
	tokens TokenStore
}

func NewAdmin(baseURL string, httpClient *http.Client, tokens TokenStore) *Admin {
	return &Admin{c: New(baseURL, httpClient, tokens), tokens: tokens}
}

func (a *Admin) Login(ctx context.Context, creds types.Credentials) (AuthResult, error) {
	return authenticate(ctx, a.c, a.tokens, "/admin/login", creds)
}

func (a *Admin) Logout(ctx context.Context) error {
	return a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/admin/logout"}, nil)
}

// CurrentUser is the admin "whoami" call.
func (a *Admin) CurrentUser(ctx context.Context) (types.User, error) {
	data, err := a.c.raw(ctx, Request{Path: "/admin/user"})
	if err != nil {
		return types.User{}, err
	}
	return DecodeUser(data)
}

// dashboardKeys are the stats a bare dashboard object must show at least
// one of.
var dashboardKeys = []string{"organizations", "org_admins", "exams", "students"}

// Dashboard accepts {"data": {...stats}} or a bare stats object.
func (a *Admin) Dashboard(ctx context.Context) (types.Dashboard, error) {
	data, err := a.c.raw(ctx, Request{Path: "/admin/dashboard"})
	if err != nil {
		return types.Dashboard{}, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return types.Dashboard{}, fmt.Errorf("%w: dashboard: %v", ErrUnrecognizedShape, err)
	}
	src := data
	if raw, ok := fields["data"]; ok {
		src = raw
		fields = nil
		if err := json.Unmarshal(raw, &fields); err != nil {
			return types.Dashboard{}, fmt.Errorf("%w: dashboard data: %v", ErrUnrecognizedShape, err)
		}
	}
	hasStat := func(k string) bool {
		_, ok := fields[k]
		return ok
	}
	if !slices.ContainsFunc(dashboardKeys, hasStat) {
		return types.Dashboard{}, fmt.Errorf("%w: dashboard has no stats", ErrUnrecognizedShape)
	}
	var dash types.Dashboard
	if err := json.Unmarshal(src, &dash); err != nil {
		return types.Dashboard{}, fmt.Errorf("%w: dashboard: %v", ErrUnrecognizedShape, err)
	}
	return dash, nil
}

func (a *Admin) Organizations(ctx context.Context) ([]types.Organization, error) {
	return list[types.Organization](ctx, a.c, "/admin/organizations")
}

func (a *Admin) Organization(ctx context.Context, id int64) (types.Organization, error) {
	return record[types.Organization](ctx, a.c, Request{Path: organizationPath(id)})
}

func (a *Admin) CreateOrganization(ctx context.Context, org types.Organization) (types.Organization, error) {
	if err := checkPayload(org); err != nil {
		return types.Organization{}, err
	}
	return record[types.Organization](ctx, a.c, Request{Method: http.MethodPost, Path: "/admin/organizations", Body: org})
}

func (a *Admin) UpdateOrganization(ctx context.Context, id int64, org types.Organization) (types.Organization, error) {
	if err := checkPayload(org); err != nil {
		return types.Organization{}, err
	}
	return record[types.Organization](ctx, a.c, Request{Method: http.MethodPut, Path: organizationPath(id), Body: org})
}

func (a *Admin) DeleteOrganization(ctx context.Context, id int64) error {
	return a.c.Do(ctx, Request{Method: http.MethodDelete, Path: organizationPath(id)}, nil)
}

func (a *Admin) OrgAdmins(ctx context.Context) ([]types.OrgAdmin, error) {
	return list[types.OrgAdmin](ctx, a.c, "/admin/org-admins")
}

func (a *Admin) OrgAdmin(ctx context.Context, id int64) (types.OrgAdmin, error) {
	return record[types.OrgAdmin](ctx, a.c, Request{Path: orgAdminPath(id)})
}

func (a *Admin) CreateOrgAdmin(ctx context.Context, in types.OrgAdminInput) (types.OrgAdmin, error) {
	if err := checkPayload(in); err != nil {
		return types.OrgAdmin{}, err
	}
	if in.Password == "" {
		return types.OrgAdmin{}, &Error{
			Status:  http.StatusUnprocessableEntity,
			Message: "The given data was invalid.",
			Errors:  map[string][]string{"password": {"The password field is required."}},
		}
	}
	return record[types.OrgAdmin](ctx, a.c, Request{Method: http.MethodPost, Path: "/admin/org-admins", Body: in})
}

func (a *Admin) UpdateOrgAdmin(ctx context.Context, id int64, in types.OrgAdminInput) (types.OrgAdmin, error) {
	if err := checkPayload(in); err != nil {
		return types.OrgAdmin{}, err
	}
	return record[types.OrgAdmin](ctx, a.c, Request{Method: http.MethodPut, Path: orgAdminPath(id), Body: in})
}

func (a *Admin) DeleteOrgAdmin(ctx context.Context, id int64) error {
	return a.c.Do(ctx, Request{Method: http.MethodDelete, Path: orgAdminPath(id)}, nil)
}

// Exams and ExamDates are scoped by the API to the org admin's organisation.
func (a *Admin) Exams(ctx context.Context) ([]types.Exam, error) {
	return list[types.Exam](ctx, a.c, "/exams")
}

func (a *Admin) ExamDates(ctx context.Context) ([]types.ExamDate, error) {
	return list[types.ExamDate](ctx, a.c, "/exam-dates")
}

func organizationPath(id int64) string { return fmt.Sprintf("/admin/organizations/%d", id) }
func orgAdminPath(id int64) string     { return fmt.Sprintf("/admin/org-admins/%d", id) }
