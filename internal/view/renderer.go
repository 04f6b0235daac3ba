// Package view renders page view models with the embedded HTML templates.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/opencollective/frontend/internal/page"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates rendered outside of a page controller
const (
	TemplateError    = "error"
	TemplateNotFound = "notfound"
)

// PageData is what every template receives. Data holds the page specific
// view model.
type PageData struct {
	Page   string      `json:"page"`
	Title  string      `json:"title,omitempty"`
	Path   string      `json:"path"`
	State  string      `json:"state"`
	FormID string      `json:"formId,omitempty"`
	Result page.Result `json:"result"`
	Error  string      `json:"error,omitempty"`
	Data   interface{} `json:"data,omitempty"`

	Lang language.Tag `json:"-"`
}

// Renderer renders pages into the shared base layout
type Renderer struct {
	base   *template.Template
	pages  fs.FS
	logger *zap.Logger
}

// NewRenderer parses the base layout
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	base, err := template.New("base").
		Funcs(templateFuncs()).
		ParseFS(templatesFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}
	return &Renderer{
		base:   base,
		pages:  templatesFS,
		logger: logger,
	}, nil
}

// Render writes the named page inside the base layout. Each page defines a
// "content" block, so pages are parsed into a clone of the base.
func (r *Renderer) Render(w io.Writer, name string, data PageData) error {
	if name == "" {
		name = TemplateError
	}
	tmpl, err := r.base.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone base template: %w", err)
	}
	if _, err := tmpl.ParseFS(r.pages, "templates/"+name+".html"); err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		r.logger.Error("Failed to render template", zap.String("template", name), zap.Error(err))
		return fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return nil
}

// Has reports whether a page template exists
func (r *Renderer) Has(name string) bool {
	_, err := fs.Stat(r.pages, "templates/"+name+".html")
	return err == nil
}
