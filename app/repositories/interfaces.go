package repositories

import "blog/app/models"

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	// List returns all posts, newest first (publication time descending,
	// ties broken by ID descending).
	List() ([]*models.Post, error)
	// Delete removes the post and nulls the post reference of its
	// comments in the same transaction.
	Delete(id int) error
	Count() (int, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create stores the comment after verifying, in the same transaction,
	// that the referenced post exists. Returns ErrNotFound otherwise.
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	// ListByPost returns the post's comments oldest first.
	ListByPost(postID int) ([]*models.Comment, error)
	// ListOrphaned returns comments whose post reference has been nulled.
	ListOrphaned() ([]*models.Comment, error)
	Delete(id int) error
}

// UserRepository defines the interface for account data access, including
// sessions and password reset tokens.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error

	SaveSession(session *models.Session) error
	GetSession(token string) (*models.Session, error)
	DeleteSession(token string) error
	DeleteSessionsForUser(userID int) error

	SaveResetToken(token *models.ResetToken) error
	GetResetToken(token string) (*models.ResetToken, error)
	// ConsumeResetToken returns the token and deletes it in the same
	// transaction, so a token can be redeemed at most once.
	ConsumeResetToken(token string) (*models.ResetToken, error)
	DeleteResetTokensForUser(userID int) error
}
