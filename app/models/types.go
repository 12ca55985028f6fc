package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DefaultTeaser is used when a post is created without a short description.
const DefaultTeaser = "The post does not have a brief description."

// Post is a blog post.
type Post struct {
	ID          int        `json:"id" validate:"gte=0"`
	Title       string     `json:"title" validate:"required,max=254"`
	Text        string     `json:"text" validate:"required"`
	Teaser      string     `json:"teaser"`
	PublishedAt time.Time  `json:"published_at"`
	Comments    []*Comment `json:"-" validate:"-"`
}

// Comment is a reader comment under a post. PostID is a pointer because
// deleting a post orphans its comments instead of removing them: the
// reference is set to nil and the comment survives. UserID may point at a
// user that no longer exists; readers must tolerate that.
type Comment struct {
	ID          int       `json:"id" validate:"gte=0"`
	PostID      *int      `json:"post_id"`
	UserID      int       `json:"user_id" validate:"required,gt=0"`
	Text        string    `json:"text" validate:"required"`
	PublishedAt time.Time `json:"published_at"`
}

// User is a registered account.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username" validate:"required,max=150"`
	Email        string    `json:"email" validate:"required,email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a logged-in browser session, identified by an opaque token
// stored in a cookie.
type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResetToken is a single-use password reset token. It is deleted when used
// and whenever the owning user's password changes.
type ResetToken struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
