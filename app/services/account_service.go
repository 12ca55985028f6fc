package services

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"blog/app/mail"
	"blog/app/models"
	"blog/app/repositories"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session_id"

const resetTokenTTL = 24 * time.Hour

// ErrInvalidCredentials is returned when a login attempt fails. It is a
// user error, not a system fault.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrInvalidToken is returned when a password reset token is unknown,
// already used, or expired.
var ErrInvalidToken = errors.New("invalid or expired reset token")

// SignUpForm carries a registration submission.
type SignUpForm struct {
	Username        string `validate:"required,max=150"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8"`
	PasswordConfirm string `validate:"required,eqfield=Password"`
}

// SettingsForm carries a profile update submission.
type SettingsForm struct {
	FirstName string `validate:"max=150"`
	LastName  string `validate:"max=150"`
	Email     string `validate:"required,email"`
}

// NewPasswordForm carries the new password of a change or reset.
type NewPasswordForm struct {
	Password        string `validate:"required,min=8"`
	PasswordConfirm string `validate:"required,eqfield=Password"`
}

// AccountService implements the identity flows: sign-up, login/logout,
// profile settings, password change, and password reset by emailed
// single-use token.
type AccountService struct {
	users      repositories.UserRepository
	sender     mail.Sender
	fromAddr   string
	sessionTTL time.Duration
}

// NewAccountService creates a new AccountService
func NewAccountService(users repositories.UserRepository, sender mail.Sender, fromAddr string, sessionTTL time.Duration) *AccountService {
	return &AccountService{
		users:      users,
		sender:     sender,
		fromAddr:   fromAddr,
		sessionTTL: sessionTTL,
	}
}

// SignUp registers a new account and logs it in, returning the session
func (s *AccountService) SignUp(form SignUpForm) (*models.Session, error) {
	if err := fieldErrors(validate.Struct(form)); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: string(hash),
	}
	err = s.users.Create(user)
	switch {
	case errors.Is(err, repositories.ErrUsernameTaken):
		return nil, NewValidationError("username", "A user with that username already exists.")
	case errors.Is(err, repositories.ErrEmailTaken):
		return nil, NewValidationError("email", "A user with that email already exists.")
	case err != nil:
		return nil, err
	}

	return s.newSession(user.ID)
}

// LogIn verifies the credentials and opens a session
func (s *AccountService) LogIn(username, password string) (*models.Session, error) {
	user, err := s.users.GetByUsername(username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(user.ID)
}

// LogOut closes the session identified by the token
func (s *AccountService) LogOut(token string) error {
	return s.users.DeleteSession(token)
}

// CurrentUser resolves the request's session cookie to a user. It returns
// nil for anonymous, expired, or otherwise unresolvable sessions; callers
// treat nil as "not logged in", never as an error.
func (s *AccountService) CurrentUser(r *http.Request) *models.User {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	session, err := s.users.GetSession(cookie.Value)
	if err != nil {
		return nil
	}
	if time.Now().After(session.ExpiresAt) {
		s.users.DeleteSession(session.Token)
		return nil
	}

	user, err := s.users.GetByID(session.UserID)
	if err != nil {
		return nil
	}
	return user
}

// UpdateSettings updates the profile fields of an account
func (s *AccountService) UpdateSettings(userID int, form SettingsForm) error {
	if err := fieldErrors(validate.Struct(form)); err != nil {
		return err
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}

	user.FirstName = form.FirstName
	user.LastName = form.LastName
	user.Email = form.Email

	err = s.users.Update(user)
	if errors.Is(err, repositories.ErrEmailTaken) {
		return NewValidationError("email", "A user with that email already exists.")
	}
	return err
}

// ChangePassword sets a new password after verifying the old one. Any
// outstanding reset tokens stop working.
func (s *AccountService) ChangePassword(userID int, oldPassword string, form NewPasswordForm) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return NewValidationError("old_password", "Your old password was entered incorrectly.")
	}
	if err := fieldErrors(validate.Struct(form)); err != nil {
		return err
	}

	return s.setPassword(user, form.Password)
}

// RequestPasswordReset mails a single-use reset link to the address, if it
// belongs to an account. Unknown addresses are ignored without error so
// the form does not reveal which emails are registered.
func (s *AccountService) RequestPasswordReset(email, baseURL string) error {
	user, err := s.users.GetByEmail(email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	rt := &models.ResetToken{
		Token:     token.String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.users.SaveResetToken(rt); err != nil {
		return err
	}

	body := fmt.Sprintf(
		"You're receiving this email because you requested a password reset.\r\n"+
			"Please go to the following page and choose a new password:\r\n"+
			"%s/accounts/reset/%s/\r\n", baseURL, rt.Token)
	if err := s.sender.Send("Password reset", body, s.fromAddr, []string{user.Email}); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}
	return nil
}

// CheckResetToken reports whether the token is known and unexpired,
// without consuming it. Used to decide whether to show the reset form.
func (s *AccountService) CheckResetToken(token string) error {
	rt, err := s.users.GetResetToken(token)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if time.Now().After(rt.ExpiresAt) {
		return ErrInvalidToken
	}
	return nil
}

// ResetPassword redeems a reset token and sets the new password. The token
// is consumed on use and all remaining tokens and sessions of the user are
// invalidated.
func (s *AccountService) ResetPassword(token string, form NewPasswordForm) error {
	if err := fieldErrors(validate.Struct(form)); err != nil {
		return err
	}

	rt, err := s.users.ConsumeResetToken(token)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if time.Now().After(rt.ExpiresAt) {
		return ErrInvalidToken
	}

	user, err := s.users.GetByID(rt.UserID)
	if err != nil {
		return err
	}
	if err := s.setPassword(user, form.Password); err != nil {
		return err
	}
	return s.users.DeleteSessionsForUser(user.ID)
}

func (s *AccountService) setPassword(user *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(user); err != nil {
		return err
	}
	return s.users.DeleteResetTokensForUser(user.ID)
}

func (s *AccountService) newSession(userID int) (*models.Session, error) {
	token, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	session := &models.Session{
		Token:     token.String(),
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.users.SaveSession(session); err != nil {
		return nil, err
	}
	return session, nil
}
