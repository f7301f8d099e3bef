package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"tasktrack/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages map[string]*template.Template

var pageNames = []string{"login", "register", "dashboard", "task_form", "confirm_delete", "chart"}

var funcs = template.FuncMap{
	"created":  domain.DisplayDate,
	"statuses": domain.Statuses,
}

func parsePages() (pages, error) {
	out := make(pages, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// page carries the fields the layout reads.
type page struct {
	Title  string
	Nav    bool
	User   *domain.User
	Banner string
	Notice string
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	t, ok := s.pages[name]
	if !ok {
		s.logger.Error("unknown template", "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("render template", "name", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
