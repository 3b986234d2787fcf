// Package web holds the embedded server-rendered views.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Views renders the HTML pages from the embedded template set.
type Views struct {
	templates *template.Template
}

func NewViews() (*Views, error) {
	funcs := template.FuncMap{
		// fecha renders an optional date the way the UI shows it.
		"fecha": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("02/01/2006")
		},
	}
	templates, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Views{templates: templates}, nil
}

// Render writes the named page. Render errors are returned rather than
// half-written, so callers decide how to degrade.
func (v *Views) Render(w io.Writer, name string, data any) error {
	return v.templates.ExecuteTemplate(w, name, data)
}
