package http

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// loadTemplates parses every *.html in dir, or the embedded copies when dir
// is empty.
func loadTemplates(dir string) (*template.Template, error) {
	tmpl := template.New("")
	if dir != "" {
		parsed, err := tmpl.ParseGlob(filepath.Join(dir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("parse templates in %s: %w", dir, err)
		}
		return parsed, nil
	}
	return tmpl.ParseFS(templateFS, "templates/*.html")
}

// staticFileSystem serves dir, or the embedded assets when dir is empty.
func staticFileSystem(dir string) http.FileSystem {
	if dir != "" {
		return gin.Dir(dir, false)
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // the embed directive guarantees the directory
	}
	return http.FS(sub)
}
