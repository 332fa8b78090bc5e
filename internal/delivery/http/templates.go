package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// ParseTemplates parses the embedded page and fragment templates
func ParseTemplates() (*template.Template, error) {
	tpl, err := template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tpl, nil
}

// renderTemplate executes into a buffer first so a template error never
// leaves a half-written page
func renderTemplate(c echo.Context, tpl *template.Template, status int, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, data); err != nil {
		c.Logger().Errorf("render %s: %v", name, err)
		return c.HTML(http.StatusInternalServerError, `<div class="text-rose-400">❌ Failed to render page</div>`)
	}
	return c.HTMLBlob(status, buf.Bytes())
}
