package models

import (
	"errors"
	"time"
)

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.PublishedAt.IsZero() {
		return errors.New("published_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate() {
	if c.PublishedAt.IsZero() {
		c.PublishedAt = time.Now()
	}
}

// SetPost sets the owning post and updates the post reference
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}

	id := post.ID
	c.PostID = &id
	return nil
}

// Orphan clears the post reference, keeping the comment itself. This is
// what happens to a comment when its post is deleted.
func (c *Comment) Orphan() {
	c.PostID = nil
}
