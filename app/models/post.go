package models

import (
	"errors"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.PublishedAt.IsZero() {
		return errors.New("published_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now()
	}
	if p.Teaser == "" {
		p.Teaser = DefaultTeaser
	}
}
