package echoportal

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// templateRenderer is the echo.Renderer for the portal pages.
type templateRenderer struct {
	templates *template.Template
}

var _ echo.Renderer = (*templateRenderer)(nil)

func newTemplateRenderer() (*templateRenderer, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parsing templates")
	}
	return &templateRenderer{templates: tmpl}, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
