// Package handler contains the HTTP handlers: parse the request, call the
// service, render a page or write a JSON error. No business rules live here.
package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

// Renderer holds the parsed page templates.
//
// Every page file in the template directory is parsed together with base.html
// at startup, so a broken template fails server construction instead of the
// first request. Pages are keyed by filename without extension ("users",
// "add_movie", ...).
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses base.html plus every other *.html file in templateDir.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	base := filepath.Join(templateDir, "base.html")

	files, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("listing templates in %s: %w", templateDir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found in %s", templateDir)
	}

	// The users page links each name to /user_movies/<id>; ids are the
	// 1-based list position (user ids are count+1 and never reused).
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}

	pages := make(map[string]*template.Template)
	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), ".html")
		if name == "base" {
			continue
		}
		tmpl, err := template.New("base.html").Funcs(funcs).ParseFiles(base, f)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", f, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Render executes the named page into the response with the given status.
//
// The page is rendered to a buffer first so a template error can still
// produce a clean 500 — once bytes hit the ResponseWriter the status is
// locked in.
func (rn *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := rn.pages[page]
	if !ok {
		rn.logger.Error("unknown template requested", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		rn.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// NotFoundPage renders the 404 page. Used both by the router's catch-all and
// by page handlers whose target entity is missing.
func (rn *Renderer) NotFoundPage(w http.ResponseWriter) {
	rn.Render(w, http.StatusNotFound, "404", map[string]any{
		"Title": "Page Not Found",
	})
}
