package model

import "time"

// Published flag values for the posts.published column.
// The schema keeps an integer 0/1 flag rather than a boolean.
const (
	PostDraft     = 0
	PostPublished = 1
)

// Post represents a blog post owned by exactly one user.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published int       `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Author is the owning user's name, populated by joined reads.
	// Empty when the post was loaded without the join.
	Author string `json:"author,omitempty"`
}

// IsPublished reports whether the post is visible on listing pages.
func (p *Post) IsPublished() bool {
	return p.Published == PostPublished
}
