// Package view renders the portal's HTML pages. Templates are embedded in
// the binary; each page is parsed together with the shared layout and
// partials into its own template set.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aanand-mishra/ugs-portal/internal/types"
)

//go:embed templates static
var files embed.FS

// Page is the data every template receives.
type Page struct {
	Title string
	// Tier selects the navigation: "student", "admin" or empty for public pages.
	Tier string
	User *types.User

	// Error is the page-local error banner; Notice a success banner.
	Error  string
	Notice string
	// Fields holds per-field validation messages keyed by JSON field name.
	Fields map[string][]string

	// Form echoes submitted values back into the form.
	Form any
	Data any

	// Refresh, when set, reloads the page after that many seconds.
	Refresh int
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"fieldErrors": func(fields map[string][]string, name string) []string {
		return fields[name]
	},
	"roleLabel": func(role string) string {
		switch role {
		case types.RoleSuperAdmin:
			return "Super admin"
		case types.RoleOrgAdmin:
			return "Org admin"
		case types.RoleStudent:
			return "Student"
		default:
			return role
		}
	},
	"score": func(s *float64) string {
		if s == nil {
			return "-"
		}
		return strconv.FormatFloat(*s, 'f', -1, 64)
	},
}

// New parses every page under templates/pages. Page names are their path
// without the directory prefix and extension, e.g. "admin/organizations".
func New() (*Renderer, error) {
	shared := []string{"templates/layout.html", "templates/partials.html"}
	r := &Renderer{pages: make(map[string]*template.Template)}

	err := fs.WalkDir(files, "templates/pages", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".html") {
			return err
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/pages/"), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(files, append(shared, path)...)
		if err != nil {
			return fmt.Errorf("view.New: parse %s: %w", name, err)
		}
		r.pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is New for program start-up; the templates are embedded, so a
// failure is a build defect.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the named page into a buffer first so a template error
// can still become a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	t, ok := r.pages[name]
	if !ok {
		slog.Error("unknown page", slog.String("page", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		slog.Error("render failed", slog.String("page", name), slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Static serves the embedded stylesheet under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
