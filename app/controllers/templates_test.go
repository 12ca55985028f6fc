package controllers

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "layout.html", `{{define "layout"}}<main>{{template "content" .}}</main>{{end}}`)
	writeTemplate(t, dir, "index.html", `{{define "content"}}hello {{.Name}}{{end}}`)
	writeTemplate(t, dir, "about.html", `{{define "content"}}about{{end}}`)

	templates, err := LoadTemplates(dir)
	require.NoError(t, err)

	assert.Contains(t, templates, "index")
	assert.Contains(t, templates, "about")
	assert.NotContains(t, templates, "layout")
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "layout.html", `{{define "layout"}}<main>{{template "content" .}}</main>{{end}}`)
	writeTemplate(t, dir, "index.html", `{{define "content"}}hello {{.Name}}{{end}}`)

	templates, err := LoadTemplates(dir)
	require.NoError(t, err)

	t.Run("page renders inside the layout", func(t *testing.T) {
		rec := httptest.NewRecorder()
		render(rec, templates, "index", map[string]any{"Name": "alice"})
		assert.Equal(t, "<main>hello alice</main>", rec.Body.String())
	})

	t.Run("unknown page is a server error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		render(rec, templates, "missing", nil)
		assert.Equal(t, 500, rec.Code)
	})
}
