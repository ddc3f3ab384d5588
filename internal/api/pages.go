// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/sage/internal/api/middleware"
	"github.com/ManuGH/sage/internal/log"
)

// pageData is available to every page template.
type pageData struct {
	Version    string
	Disclaimer string
}

// pageFiles maps routes to files under <webroot>/templates.
var pageFiles = map[string]string{
	"/":         "index.html",
	"/login":    "login.html",
	"/register": "register.html",
	"/history":  "history.html",
}

// pages holds the pre-rendered templates and the static directory.
type pages struct {
	rendered  map[string][]byte
	staticDir string
}

// loadPages renders every template present under root. An empty root
// disables pages; a missing template leaves its route unregistered.
func loadPages(root string, data pageData) (*pages, error) {
	p := &pages{rendered: make(map[string][]byte)}
	if root == "" {
		return p, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve web root: %w", err)
	}

	for route, name := range pageFiles {
		file := filepath.Join(abs, "templates", name)
		tmpl, err := template.ParseFiles(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render template %s: %w", name, err)
		}
		p.rendered[route] = buf.Bytes()
	}

	staticDir := filepath.Join(abs, "static")
	if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
		if real, err := filepath.EvalSymlinks(staticDir); err == nil {
			p.staticDir = real
		}
	}
	return p, nil
}

func (p *pages) mount(r chi.Router) {
	for route, body := range p.rendered {
		r.Get(route, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(body)
		})
	}
	if p.staticDir != "" {
		r.Get("/static/*", p.serveStatic)
	}
}

// serveStatic serves files below the static directory. Traversal,
// symlink escapes and directory listings are answered with 404.
func (p *pages) serveStatic(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "static")
	notFound := func(reason string) {
		logger.Debug().Str(log.FieldEvent, "static.denied").Str(log.FieldPath, r.URL.Path).Str("reason", reason).Msg("static request denied")
		middleware.WriteDetail(w, r, http.StatusNotFound, "Not Found")
	}

	rel := chi.URLParam(r, "*")
	if rel == "" || strings.HasSuffix(rel, "/") || strings.ContainsRune(rel, 0) {
		notFound("directory_listing")
		return
	}
	cleaned := path.Clean("/" + rel)
	full := filepath.Join(p.staticDir, filepath.FromSlash(cleaned))

	real, err := filepath.EvalSymlinks(full)
	if err != nil {
		notFound("not_found")
		return
	}
	relPath, err := filepath.Rel(p.staticDir, real)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || filepath.IsAbs(relPath) {
		notFound("path_escape")
		return
	}

	// #nosec G304 -- real is validated to reside inside the static directory
	f, err := os.Open(real)
	if err != nil {
		notFound("not_found")
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		notFound("directory_listing")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
