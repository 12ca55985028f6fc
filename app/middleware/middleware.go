package middleware

import (
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"blog/app/models"
)

// statusWriter remembers the status code written to the response.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Logger logs method, path, status and duration of each request
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		log.Infof("[http] %s %s -> %d (%v)", r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}

// Recoverer recovers from handler panics and answers with a 500
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorf("[http] panic serving %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// UserResolver resolves the current request to a user, or nil for
// anonymous visitors.
type UserResolver interface {
	CurrentUser(r *http.Request) *models.User
}

// RequireAuth wraps a handler so that anonymous visitors are redirected to
// the login page with a continuation back to the requested URL.
func RequireAuth(accounts UserResolver, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if accounts.CurrentUser(r) == nil {
			http.Redirect(w, r, LoginURL(r.URL.Path), http.StatusFound)
			return
		}
		next(w, r)
	}
}

// LoginURL builds the login URL with a continuation back to next
func LoginURL(next string) string {
	return "/accounts/login/?next=" + url.QueryEscape(next)
}
