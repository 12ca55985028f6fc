package services

import (
	"strings"

	"blog/app/models"
	"blog/app/repositories"
)

// CommentService handles authoring of comments against posts
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// AddComment validates and stores a new comment on behalf of the given
// user. Text must be non-empty after trimming; the post must exist. Both
// checks run before any write, and the post existence check is part of
// the repository's insert transaction, so a concurrently deleted post can
// never end up with a fresh comment pointing at it.
func (s *CommentService) AddComment(postID, userID int, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("text", "This field is required.")
	}

	comment := &models.Comment{
		PostID: &postID,
		UserID: userID,
		Text:   text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListPostComments retrieves all comments for a post, oldest first
func (s *CommentService) ListPostComments(postID int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(postID)
}
