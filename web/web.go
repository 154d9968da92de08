// Package web holds the server-rendered page templates.
package web

import (
	"embed"
	"html/template"
	"path/filepath"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses *.html from dir, falling back to the built-in copies when
// dir is empty or holds no templates.
func Templates(dir string) (*template.Template, error) {
	if dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			return template.ParseFiles(matches...)
		}
	}
	return template.ParseFS(files, "templates/*.html")
}
