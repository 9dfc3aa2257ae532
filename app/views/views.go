// Package views holds the HTML pages rendered by the app
package views

import (
	"embed"
	"html/template"
)

//go:embed *.tmpl
var files embed.FS

// Load parses every page. Pages are looked up by file name, e.g. "signin.tmpl".
func Load() (*template.Template, error) {
	return template.ParseFS(files, "*.tmpl")
}
