// Package views renders the HTML pages of the portfolio.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/bindery/internal/catalog"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	PageList     = "list"
	PageForm     = "form"
	PageNotFound = "notfound"
)

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{PageList, PageForm, PageNotFound} {
		pages[name] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.html", "templates/"+name+".html"))
	}
}

var funcs = template.FuncMap{
	"fieldError": func(f catalog.Form, field string) string {
		return f.FieldErrors[field]
	},
	"inc": func(i int) int { return i + 1 },
}

// Render executes a page into a buffer first so a template error never
// leaves a half-written response.
func Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := io.Copy(w, &buf)
	return err
}
