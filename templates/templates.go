package templates

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed *.html
var files embed.FS

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"km":    func(v float64) string { return fmt.Sprintf("%.2f km", v) },
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// Load parses every embedded page
func Load() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "*.html")
}
