package http

import (
	"embed"
	"html/template"
	"time"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

// templateFuncs are available to every page.
var templateFuncs = template.FuncMap{
	"pubDate": func(t time.Time) string {
		return t.Format(entities.PublicationLayout)
	},
	"formatMonth": catalog.FormatPublicationMonth,
	"formatTime": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	},
	"add": func(a, b int) int {
		return a + b
	},
	"subtract": func(a, b int) int {
		return a - b
	},
}

// ParseTemplates loads the embedded page templates. The auth controller
// renders login.html from the same set.
func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
