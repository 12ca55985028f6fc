package services

import (
	"errors"
	"fmt"
	"strings"

	"blog/app/models"
	"blog/app/repositories"
)

const (
	// ListingPageSize is the number of posts on a main listing page.
	ListingPageSize = 2
	// SearchPageSize is the number of posts on a search results page.
	SearchPageSize = 10
	// RecentPostCount is the size of the recent-posts sidebar.
	RecentPostCount = 5
)

// ErrPageOutOfRange is returned for page numbers below 1 or past the last
// page. The route layer surfaces it as a 404.
var ErrPageOutOfRange = errors.New("page out of range")

// Pagination describes the position of a page within the full result set.
// Prev and Next are only meaningful when HasPrev/HasNext are set; the
// first page is always 1 and the last is TotalPages.
type Pagination struct {
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	Prev       int
	Next       int
}

// PostService handles listing, pagination and search of blog posts
type PostService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// CreatePost creates a new blog post with validation
func (s *PostService) CreatePost(post *models.Post) error {
	if post.Title == "" {
		return NewValidationError("title", "This field is required.")
	}
	if post.Text == "" {
		return NewValidationError("text", "This field is required.")
	}
	return s.postRepo.Create(post)
}

// GetPost retrieves a post by ID with its comments
func (s *PostService) GetPost(id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %v", err)
	}
	post.Comments = comments

	return post, nil
}

// DeletePost deletes a post. Its comments survive with a nulled post
// reference; the repository handles the orphaning.
func (s *PostService) DeletePost(id int) error {
	return s.postRepo.Delete(id)
}

// Page returns one page of the main listing, newest posts first
func (s *PostService) Page(page int) ([]*models.Post, Pagination, error) {
	posts, err := s.postRepo.List()
	if err != nil {
		return nil, Pagination{}, err
	}
	return paginate(posts, page, ListingPageSize)
}

// Search returns one page of posts matching the canonical query. A post
// matches when every query word occurs, case-insensitively, in the title
// or in the text. No match is an empty first page, not an error.
func (s *PostService) Search(canonical string, page int) ([]*models.Post, Pagination, error) {
	posts, err := s.postRepo.List()
	if err != nil {
		return nil, Pagination{}, err
	}

	words := strings.Split(canonical, "_")
	var matched []*models.Post
	for _, post := range posts {
		if matchesAllWords(post, words) {
			matched = append(matched, post)
		}
	}

	return paginate(matched, page, SearchPageSize)
}

// CanonicalQuery turns a raw search phrase into its canonical, URL-safe
// form: lower-cased, words joined by single underscores. Splitting the
// result on underscores recovers the word list; no other state is carried
// between search submission and the results page.
func (s *PostService) CanonicalQuery(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), "_")
}

// Recent returns the n most recent posts for the sidebar
func (s *PostService) Recent(n int) ([]*models.Post, error) {
	posts, err := s.postRepo.List()
	if err != nil {
		return nil, err
	}
	if len(posts) > n {
		posts = posts[:n]
	}
	return posts, nil
}

func matchesAllWords(post *models.Post, words []string) bool {
	title := strings.ToLower(post.Title)
	text := strings.ToLower(post.Text)
	for _, word := range words {
		if !strings.Contains(title, word) && !strings.Contains(text, word) {
			return false
		}
	}
	return true
}

// paginate slices an ordered result set into 1-indexed pages. An empty set
// still has a valid (empty) page 1.
func paginate(posts []*models.Post, page, size int) ([]*models.Post, Pagination, error) {
	total := len(posts)
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 || page > totalPages {
		return nil, Pagination{}, ErrPageOutOfRange
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pg := Pagination{
		Page:       page,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		Prev:       page - 1,
		Next:       page + 1,
	}
	return posts[start:end], pg, nil
}
