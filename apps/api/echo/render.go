package echoapi

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/progressiveschool/progressive/core"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

type renderer struct {
	templates *template.Template
}

func newRenderer() *renderer {
	return &renderer{
		templates: template.Must(template.ParseFS(templateFS, "templates/*.gohtml")),
	}
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, ctx echo.Context) error {
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return core.NewRenderingError(err)
	}
	return nil
}
