package repositories

import (
	"testing"
	"time"

	"blog/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgerPostRepository(db)

	post := &models.Post{Title: "First", Text: "Hello"}
	require.NoError(t, repo.Create(post))

	assert.Equal(t, 1, post.ID)
	assert.False(t, post.PublishedAt.IsZero())
	assert.Equal(t, models.DefaultTeaser, post.Teaser)

	got, err := repo.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)

	_, err = repo.GetByID(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepositoryListOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgerPostRepository(db)

	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		post := &models.Post{
			Title:       "Post",
			Text:        "Text",
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Create(post))
	}
	// Two posts sharing a timestamp: the higher ID wins the tie.
	for i := 0; i < 2; i++ {
		post := &models.Post{Title: "Tied", Text: "Text", PublishedAt: base.Add(48 * time.Hour)}
		require.NoError(t, repo.Create(post))
	}

	posts, err := repo.List()
	require.NoError(t, err)
	require.Len(t, posts, 5)

	assert.Equal(t, 5, posts[0].ID)
	assert.Equal(t, 4, posts[1].ID)
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].PublishedAt.After(posts[i-1].PublishedAt))
	}

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestPostRepositoryDeleteOrphansComments(t *testing.T) {
	db := setupTestDB(t)
	posts := NewBadgerPostRepository(db)
	comments := NewBadgerCommentRepository(db)

	post := &models.Post{Title: "Doomed", Text: "Text"}
	require.NoError(t, posts.Create(post))
	other := &models.Post{Title: "Survivor", Text: "Text"}
	require.NoError(t, posts.Create(other))

	for _, pid := range []int{post.ID, post.ID, other.ID} {
		id := pid
		require.NoError(t, comments.Create(&models.Comment{PostID: &id, UserID: 1, Text: "hi"}))
	}

	require.NoError(t, posts.Delete(post.ID))

	_, err := posts.GetByID(post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The comments survive with a nulled post reference.
	orphaned, err := comments.ListOrphaned()
	require.NoError(t, err)
	assert.Len(t, orphaned, 2)
	for _, c := range orphaned {
		assert.Nil(t, c.PostID)
	}

	// The other post's comment is untouched.
	kept, err := comments.ListByPost(other.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	assert.ErrorIs(t, posts.Delete(post.ID), ErrNotFound)
}
