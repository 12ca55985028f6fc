package controllers

import (
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"blog/app/services"
)

// LoadTemplates parses every page template in dir against the shared
// layout. The map is keyed by the page file name without extension.
func LoadTemplates(dir string) (map[string]*template.Template, error) {
	layout := filepath.Join(dir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template)
	for _, page := range pages {
		if filepath.Base(page) == "layout.html" {
			continue
		}
		t, err := template.ParseFiles(layout, page)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		templates[name] = t
	}
	return templates, nil
}

func render(w http.ResponseWriter, templates map[string]*template.Template, name string, data map[string]any) {
	t, ok := templates[name]
	if !ok {
		log.Errorf("[views] template %q not found", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		log.Errorf("[views] failed to render %q: %v", name, err)
	}
}

// baseData assembles the context every page shares: the recent-posts
// sidebar and the current user.
func baseData(posts *services.PostService, accounts *services.AccountService, r *http.Request) map[string]any {
	data := map[string]any{
		"User":   accounts.CurrentUser(r),
		"Errors": map[string]string{},
	}
	recent, err := posts.Recent(services.RecentPostCount)
	if err != nil {
		log.Errorf("[views] failed to load recent posts: %v", err)
		recent = nil
	}
	data["RecentPosts"] = recent
	return data
}
