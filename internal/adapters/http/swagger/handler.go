// Package swagger serves the OpenAPI document of the HTTP API and a ReDoc
// page rendering it.
package swagger

import (
	"fmt"
	"net/http"
	"sync"

	"go.yaml.in/yaml/v3"
)

const redocScript = "https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"

var (
	parseOnce sync.Once
	parsed    Document
	parseErr  error
)

// Document is the part of the OpenAPI document checked at startup.
type Document struct {
	OpenAPI string                               `yaml:"openapi"`
	Info    struct{ Title, Version string }      `yaml:"info"`
	Paths   map[string]map[string]map[string]any `yaml:"paths"`
}

// Parse decodes the embedded document once.
func Parse() (Document, error) {
	parseOnce.Do(func() {
		if err := yaml.Unmarshal(OpenAPI, &parsed); err != nil {
			parseErr = fmt.Errorf("%w: %w", ErrServe, err)
		}
	})
	return parsed, parseErr
}

// Register attaches the docs routes to mux:
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> embedded OpenAPI document
func Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /api-docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})

	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

var indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>juicerank API</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="` + redocScript + `"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
