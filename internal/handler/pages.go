package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/snipseo/snipseo/internal/auth"
)

// PageHandler serves the HTML pages: the generator home, the dashboard,
// and the auth forms. Templates are parsed once at startup, not per
// request.
//
// Each page is its own template set sharing base.html, so pages can define
// their own "content" block without colliding.
type PageHandler struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewPageHandler parses every page template against the shared base.
func NewPageHandler(templateDir string, logger *slog.Logger) (*PageHandler, error) {
	base := filepath.Join(templateDir, "base.html")
	names := []string{"home", "dashboard", "login", "signup"}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tmpl, err := template.ParseFiles(base, filepath.Join(templateDir, name+".html"))
		if err != nil {
			return nil, fmt.Errorf("parsing %s page: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &PageHandler{pages: pages, logger: logger}, nil
}

// HandleHome serves the generator page at "/". The page gate guarantees
// only authenticated users reach it.
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "home", map[string]any{
		"Title": "SnipSEO — SEO Metadata for Code Snippets",
	})
}

// HandleDashboard serves the saved-snippets dashboard.
func (h *PageHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "dashboard", map[string]any{
		"Title": "Your Snippets — SnipSEO",
	})
}

// HandleLogin serves the login form. RedirectTo round-trips the page the
// visitor originally asked for.
func (h *PageHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login", map[string]any{
		"Title":      "Log in — SnipSEO",
		"RedirectTo": r.URL.Query().Get("redirectTo"),
		"AuthDenied": r.URL.Query().Get("auth") == "denied",
	})
}

// HandleSignup serves the signup form.
func (h *PageHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signup", map[string]any{
		"Title": "Sign up — SnipSEO",
	})
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	_, data["Authed"] = auth.UserIDFromContext(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages[page].ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
