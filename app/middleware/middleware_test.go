package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"blog/app/models"

	"github.com/stretchr/testify/assert"
)

type stubResolver struct {
	user *models.User
}

func (s *stubResolver) CurrentUser(r *http.Request) *models.User {
	return s.user
}

func TestLoggerPassesThrough(t *testing.T) {
	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestRecovererTurnsPanicInto500(t *testing.T) {
	handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	called := false
	next := func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}

	t.Run("anonymous visitors are sent to login", func(t *testing.T) {
		called = false
		handler := RequireAuth(&stubResolver{}, next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts/settings/", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/accounts/login/?next=%2Faccounts%2Fsettings%2F", rec.Header().Get("Location"))
		assert.False(t, called)
	})

	t.Run("logged-in users pass through", func(t *testing.T) {
		called = false
		handler := RequireAuth(&stubResolver{user: &models.User{ID: 1, Username: "alice"}}, next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts/settings/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})
}
