// Package web holds the reviewer-facing HTML pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/Dosada05/async-tournament/models"
)

//go:embed templates/*.html
var files embed.FS

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"str": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"when": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04:05 UTC")
	},
	"elapsed": func(race models.Race) string {
		d, ok := race.Elapsed()
		if !ok {
			return ""
		}
		d = d.Round(time.Second)
		h := int(d / time.Hour)
		m := int(d%time.Hour) / int(time.Minute)
		s := int(d%time.Minute) / int(time.Second)
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	},
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{"queue.html", "review.html", "error.html"} {
		t, err := template.New(page).Funcs(funcs).ParseFS(files, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render executes page into w.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown template %q", page)
	}
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	return nil
}
