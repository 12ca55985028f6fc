package services

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"blog/app/models"
	"blog/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPostRepo struct {
	posts  map[int]*models.Post
	nextID int
}

type mockCommentRepo struct {
	comments map[int]*models.Comment
	nextID   int
	posts    *mockPostRepo
}

func newMockRepos() (*mockPostRepo, *mockCommentRepo) {
	posts := &mockPostRepo{posts: make(map[int]*models.Post), nextID: 1}
	comments := &mockCommentRepo{comments: make(map[int]*models.Comment), nextID: 1, posts: posts}
	return posts, comments
}

// PostRepository implementation

func (m *mockPostRepo) Create(post *models.Post) error {
	post.ID = m.nextID
	m.nextID++
	post.BeforeCreate()
	m.posts[post.ID] = post
	return nil
}

func (m *mockPostRepo) GetByID(id int) (*models.Post, error) {
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

func (m *mockPostRepo) List() ([]*models.Post, error) {
	var posts []*models.Post
	for _, post := range m.posts {
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].PublishedAt.Equal(posts[j].PublishedAt) {
			return posts[i].PublishedAt.After(posts[j].PublishedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

func (m *mockPostRepo) Delete(id int) error {
	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *mockPostRepo) Count() (int, error) {
	return len(m.posts), nil
}

// CommentRepository implementation

func (m *mockCommentRepo) Create(comment *models.Comment) error {
	if comment.PostID == nil {
		return repositories.ErrNotFound
	}
	if _, exists := m.posts.posts[*comment.PostID]; !exists {
		return repositories.ErrNotFound
	}
	comment.ID = m.nextID
	m.nextID++
	comment.BeforeCreate()
	m.comments[comment.ID] = comment
	return nil
}

func (m *mockCommentRepo) GetByID(id int) (*models.Comment, error) {
	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return comment, nil
}

func (m *mockCommentRepo) ListByPost(postID int) ([]*models.Comment, error) {
	var comments []*models.Comment
	for _, comment := range m.comments {
		if comment.PostID != nil && *comment.PostID == postID {
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (m *mockCommentRepo) ListOrphaned() ([]*models.Comment, error) {
	var comments []*models.Comment
	for _, comment := range m.comments {
		if comment.PostID == nil {
			comments = append(comments, comment)
		}
	}
	return comments, nil
}

func (m *mockCommentRepo) Delete(id int) error {
	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func seedPosts(t *testing.T, service *PostService, n int) {
	t.Helper()
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		err := service.CreatePost(&models.Post{
			Title:       fmt.Sprintf("Post %d", i+1),
			Text:        "Text",
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
}

func TestPostServicePagination(t *testing.T) {
	postRepo, commentRepo := newMockRepos()
	service := NewPostService(postRepo, commentRepo)
	seedPosts(t, service, 11)

	t.Run("full pages have exactly the page size", func(t *testing.T) {
		for page := 1; page <= 5; page++ {
			posts, pg, err := service.Page(page)
			require.NoError(t, err)
			assert.Len(t, posts, ListingPageSize)
			assert.Equal(t, page, pg.Page)
			assert.Equal(t, 6, pg.TotalPages)
		}
	})

	t.Run("last page carries the remainder", func(t *testing.T) {
		posts, pg, err := service.Page(6)
		require.NoError(t, err)
		assert.Len(t, posts, 1)
		assert.True(t, pg.HasPrev)
		assert.False(t, pg.HasNext)
	})

	t.Run("past the last page is out of range", func(t *testing.T) {
		_, _, err := service.Page(7)
		assert.ErrorIs(t, err, ErrPageOutOfRange)
	})

	t.Run("page zero and negative pages are out of range", func(t *testing.T) {
		_, _, err := service.Page(0)
		assert.ErrorIs(t, err, ErrPageOutOfRange)
		_, _, err = service.Page(-3)
		assert.ErrorIs(t, err, ErrPageOutOfRange)
	})

	t.Run("newest post comes first", func(t *testing.T) {
		posts, _, err := service.Page(1)
		require.NoError(t, err)
		assert.Equal(t, "Post 11", posts[0].Title)
		assert.Equal(t, "Post 10", posts[1].Title)
	})
}

func TestPostServicePaginationEmptyStore(t *testing.T) {
	postRepo, commentRepo := newMockRepos()
	service := NewPostService(postRepo, commentRepo)

	posts, pg, err := service.Page(1)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, 1, pg.TotalPages)

	_, _, err = service.Page(2)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestPostServiceSearch(t *testing.T) {
	postRepo, commentRepo := newMockRepos()
	service := NewPostService(postRepo, commentRepo)

	fixtures := []struct{ title, text string }{
		{"HoUSE wHite", "oh say can you see"},
		{"oh say can you see", "house WHITE WAS there"},
		{"White snakes", "my houSe is in whatever street"},
		{"Green snakes", "my houSe is in whatever street"},
		{"White walls", "fresh paint everywhere"},
		{"Red snakes", "my car is in whatever street"},
	}
	for _, f := range fixtures {
		require.NoError(t, service.CreatePost(&models.Post{Title: f.title, Text: f.text}))
	}

	t.Run("every word must match in title or text", func(t *testing.T) {
		posts, _, err := service.Search("white_house", 1)
		require.NoError(t, err)

		titles := make([]string, 0, len(posts))
		for _, p := range posts {
			titles = append(titles, p.Title)
		}
		assert.Contains(t, titles, "HoUSE wHite")
		assert.Contains(t, titles, "oh say can you see")
		assert.Contains(t, titles, "White snakes")
		assert.NotContains(t, titles, "Green snakes", "one word out of two is not a match")
		assert.NotContains(t, titles, "White walls", "one word out of two is not a match")
		assert.NotContains(t, titles, "Red snakes")
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		posts, _, err := service.Search("house", 1)
		require.NoError(t, err)
		assert.Len(t, posts, 4)
	})

	t.Run("search is idempotent", func(t *testing.T) {
		first, _, err := service.Search("white_house", 1)
		require.NoError(t, err)
		second, _, err := service.Search("white_house", 1)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("no match is an empty page, not an error", func(t *testing.T) {
		posts, pg, err := service.Search("zzz", 1)
		require.NoError(t, err)
		assert.Empty(t, posts)
		assert.Equal(t, 1, pg.TotalPages)
	})
}

func TestPostServiceSearchPagination(t *testing.T) {
	postRepo, commentRepo := newMockRepos()
	service := NewPostService(postRepo, commentRepo)
	seedPosts(t, service, 25)

	posts, pg, err := service.Search("post", 1)
	require.NoError(t, err)
	assert.Len(t, posts, SearchPageSize)
	assert.Equal(t, 3, pg.TotalPages)

	posts, _, err = service.Search("post", 3)
	require.NoError(t, err)
	assert.Len(t, posts, 5)

	_, _, err = service.Search("post", 4)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestPostServiceCanonicalQuery(t *testing.T) {
	service := NewPostService(nil, nil)

	assert.Equal(t, "white_house", service.CanonicalQuery("White House"))
	assert.Equal(t, "white_house", service.CanonicalQuery("  White   House "))
	assert.Equal(t, "", service.CanonicalQuery("   "))
}

func TestPostServiceRecent(t *testing.T) {
	postRepo, commentRepo := newMockRepos()
	service := NewPostService(postRepo, commentRepo)
	seedPosts(t, service, 7)

	recent, err := service.Recent(RecentPostCount)
	require.NoError(t, err)
	require.Len(t, recent, RecentPostCount)
	assert.Equal(t, "Post 7", recent[0].Title)
	assert.Equal(t, "Post 3", recent[4].Title)
}

func TestPostServiceGetPostWithComments(t *testing.T) {
	postRepo, commentRepo := newMockRepos()
	service := NewPostService(postRepo, commentRepo)
	seedPosts(t, service, 1)

	require.NoError(t, commentRepo.Create(&models.Comment{PostID: intPtr(1), UserID: 1, Text: "first"}))

	post, err := service.GetPost(1)
	require.NoError(t, err)
	require.Len(t, post.Comments, 1)
	assert.Equal(t, "first", post.Comments[0].Text)

	_, err = service.GetPost(99)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func intPtr(i int) *int { return &i }
