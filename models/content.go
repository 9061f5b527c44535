package models

import (
	"time"

	"github.com/google/uuid"
)

// Content represents a content item with support for drafts and a
// publication schedule. The body is stored as raw markdown; rendering
// happens client-side.
type Content struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Author    string     `json:"author" db:"author"`
	Title     string     `json:"title" db:"title"`
	Subtitle  *string    `json:"subtitle,omitempty" db:"subtitle"`
	Body      string     `json:"body" db:"body"`
	Draft     bool       `json:"draft" db:"draft"`
	Active    bool       `json:"active" db:"active"`
	PublishAt *time.Time `json:"publish_at,omitempty" db:"publish_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// TableName returns the table name for the Content model
func (Content) TableName() string {
	return "contents"
}

// NewContent creates a new Content instance in draft-or-not state,
// active by default.
func NewContent(author, title string, subtitle *string, body string, draft bool) *Content {
	return &Content{
		ID:        uuid.New(),
		Author:    author,
		Title:     title,
		Subtitle:  subtitle,
		Body:      body,
		Draft:     draft,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}

// PublishedAt reports whether the item is publicly visible at the given
// time: active, not a draft, and past its schedule (if any).
func (c *Content) PublishedAt(now time.Time) bool {
	if c.Draft || !c.Active {
		return false
	}
	if c.PublishAt != nil && c.PublishAt.After(now) {
		return false
	}
	return true
}
