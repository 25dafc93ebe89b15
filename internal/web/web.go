// Package web embeds the page templates and the browser script.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/template/html/v2"

	"github.com/pelusa-v/tidbid/internal/forms"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static/*
var static embed.FS

// Engine returns the template engine for fiber.Config.Views. Templates are
// addressed by file name without extension, e.g. "admin_dashboard".
func Engine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("initials", forms.Initials)
	engine.AddFunc("counter", forms.Counter)
	engine.AddFunc("isImage", isImage)
	return engine
}

// Static serves the files under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// isImage reports whether an avatar is a picture URL rather than a letter.
func isImage(avatar string) bool {
	return strings.HasPrefix(avatar, "https://") || strings.HasPrefix(avatar, "http://") || strings.HasPrefix(avatar, "/")
}
