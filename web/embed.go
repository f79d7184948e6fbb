// Package web embeds the page templates at compile time, so the binary is
// self-contained and the markup can never drift from the running code.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templates embed.FS

// Templates parses every embedded template. Called once at startup; a
// malformed template is a build artifact problem, so parse errors are fatal
// to the caller.
func Templates() (*template.Template, error) {
	return template.ParseFS(templates, "templates/*.html")
}
