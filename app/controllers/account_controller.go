package controllers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"blog/app/models"
	"blog/app/services"
)

// AccountController handles sign-up, login/logout, profile settings and
// the password change and reset flows.
type AccountController struct {
	accounts  *services.AccountService
	posts     *services.PostService
	baseURL   string
	templates map[string]*template.Template
}

// NewAccountController creates a new AccountController
func NewAccountController(accounts *services.AccountService, posts *services.PostService,
	baseURL string, templates map[string]*template.Template) *AccountController {
	return &AccountController{
		accounts:  accounts,
		posts:     posts,
		baseURL:   baseURL,
		templates: templates,
	}
}

// SignUpForm renders the registration form
func (ac *AccountController) SignUpForm(w http.ResponseWriter, r *http.Request) {
	data := ac.baseData(r)
	data["Username"] = ""
	data["Email"] = ""
	data["Next"] = safeNext(r.URL.Query().Get("next"))
	render(w, ac.templates, "signup", data)
}

// SignUpSubmit registers the account and logs it straight in
func (ac *AccountController) SignUpSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := services.SignUpForm{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password_confirm"),
	}

	session, err := ac.accounts.SignUp(form)
	if ve, ok := services.AsValidation(err); ok {
		data := ac.baseData(r)
		data["Errors"] = ve.Fields
		data["Username"] = form.Username
		data["Email"] = form.Email
		data["Next"] = safeNext(r.FormValue("next"))
		render(w, ac.templates, "signup", data)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.setSessionCookie(w, session)
	http.Redirect(w, r, redirectTarget(r.FormValue("next")), http.StatusSeeOther)
}

// LoginForm renders the login form
func (ac *AccountController) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := ac.baseData(r)
	data["Username"] = ""
	data["Next"] = safeNext(r.URL.Query().Get("next"))
	render(w, ac.templates, "login", data)
}

// LoginSubmit verifies the credentials and opens a session. The optional
// "next" parameter is the continuation back to the page that required
// logging in; only site-local paths are honored.
func (ac *AccountController) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := r.FormValue("username")

	session, err := ac.accounts.LogIn(username, r.FormValue("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		data := ac.baseData(r)
		data["Errors"] = map[string]string{
			"__all__": "Please enter a correct username and password.",
		}
		data["Username"] = username
		data["Next"] = safeNext(r.FormValue("next"))
		render(w, ac.templates, "login", data)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.setSessionCookie(w, session)
	http.Redirect(w, r, redirectTarget(r.FormValue("next")), http.StatusSeeOther)
}

// Logout closes the session and returns to the first page
func (ac *AccountController) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(services.SessionCookieName); err == nil {
		ac.accounts.LogOut(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     services.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/page/1/", http.StatusFound)
}

// SettingsForm renders the profile settings form, prefilled
func (ac *AccountController) SettingsForm(w http.ResponseWriter, r *http.Request) {
	user := ac.accounts.CurrentUser(r)
	data := ac.baseData(r)
	data["FirstName"] = user.FirstName
	data["LastName"] = user.LastName
	data["Email"] = user.Email
	render(w, ac.templates, "settings", data)
}

// SettingsSubmit updates the profile
func (ac *AccountController) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	user := ac.accounts.CurrentUser(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := services.SettingsForm{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Email:     r.FormValue("email"),
	}

	err := ac.accounts.UpdateSettings(user.ID, form)
	if ve, ok := services.AsValidation(err); ok {
		data := ac.baseData(r)
		data["Errors"] = ve.Fields
		data["FirstName"] = form.FirstName
		data["LastName"] = form.LastName
		data["Email"] = form.Email
		render(w, ac.templates, "settings", data)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/accounts/settings/", http.StatusSeeOther)
}

// PasswordChangeForm renders the password change form
func (ac *AccountController) PasswordChangeForm(w http.ResponseWriter, r *http.Request) {
	render(w, ac.templates, "password_change", ac.baseData(r))
}

// PasswordChangeSubmit changes the password after verifying the old one
func (ac *AccountController) PasswordChangeSubmit(w http.ResponseWriter, r *http.Request) {
	user := ac.accounts.CurrentUser(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := services.NewPasswordForm{
		Password:        r.FormValue("new_password"),
		PasswordConfirm: r.FormValue("new_password_confirm"),
	}

	err := ac.accounts.ChangePassword(user.ID, r.FormValue("old_password"), form)
	if ve, ok := services.AsValidation(err); ok {
		data := ac.baseData(r)
		data["Errors"] = ve.Fields
		render(w, ac.templates, "password_change", data)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/accounts/settings/password/done/", http.StatusSeeOther)
}

// PasswordChangeDone renders the change confirmation page
func (ac *AccountController) PasswordChangeDone(w http.ResponseWriter, r *http.Request) {
	render(w, ac.templates, "password_change_done", ac.baseData(r))
}

// PasswordResetForm renders the form asking for the account email
func (ac *AccountController) PasswordResetForm(w http.ResponseWriter, r *http.Request) {
	render(w, ac.templates, "password_reset", ac.baseData(r))
}

// PasswordResetSubmit mails a reset link. The confirmation page renders
// whether or not the address belongs to an account, so the form cannot be
// used to probe registered emails.
func (ac *AccountController) PasswordResetSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		data := ac.baseData(r)
		data["Errors"] = map[string]string{"email": "This field is required."}
		render(w, ac.templates, "password_reset", data)
		return
	}

	if err := ac.accounts.RequestPasswordReset(email, ac.baseURL); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/accounts/reset/done/", http.StatusSeeOther)
}

// PasswordResetDone renders the "check your email" page
func (ac *AccountController) PasswordResetDone(w http.ResponseWriter, r *http.Request) {
	render(w, ac.templates, "password_reset_done", ac.baseData(r))
}

// PasswordResetConfirmForm renders the new-password form when the token
// from the emailed link is still valid
func (ac *AccountController) PasswordResetConfirmForm(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	data := ac.baseData(r)
	data["Token"] = token
	if err := ac.accounts.CheckResetToken(token); err != nil {
		data["InvalidToken"] = true
	}
	render(w, ac.templates, "password_reset_confirm", data)
}

// PasswordResetConfirmSubmit redeems the token and sets the new password
func (ac *AccountController) PasswordResetConfirmSubmit(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := services.NewPasswordForm{
		Password:        r.FormValue("new_password"),
		PasswordConfirm: r.FormValue("new_password_confirm"),
	}

	err := ac.accounts.ResetPassword(token, form)
	if ve, ok := services.AsValidation(err); ok {
		data := ac.baseData(r)
		data["Errors"] = ve.Fields
		data["Token"] = token
		render(w, ac.templates, "password_reset_confirm", data)
		return
	}
	if errors.Is(err, services.ErrInvalidToken) {
		data := ac.baseData(r)
		data["Token"] = token
		data["InvalidToken"] = true
		render(w, ac.templates, "password_reset_confirm", data)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/accounts/reset/complete/", http.StatusSeeOther)
}

// PasswordResetComplete renders the reset confirmation page
func (ac *AccountController) PasswordResetComplete(w http.ResponseWriter, r *http.Request) {
	render(w, ac.templates, "password_reset_complete", ac.baseData(r))
}

func (ac *AccountController) setSessionCookie(w http.ResponseWriter, session *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     services.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
	})
}

func (ac *AccountController) baseData(r *http.Request) map[string]any {
	return baseData(ac.posts, ac.accounts, r)
}

// safeNext keeps continuations site-local; anything else is dropped.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return ""
}

func redirectTarget(next string) string {
	if target := safeNext(next); target != "" {
		return target
	}
	return "/page/1/"
}
