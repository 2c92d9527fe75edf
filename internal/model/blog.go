package model

import "time"

// Blog status values. A draft is visible in listings but marked as such;
// the status column is CHECK-constrained to these two values.
const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
)

// Blog represents a blog post.
//
// AuthorID is the owning user — the only identity permitted to update or
// delete the post. Author is populated on reads (joined from the users
// table) so clients get the author's name and email without a second call.
type Blog struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	AuthorID    string    `json:"authorId"`
	Author      *UserRef  `json:"author,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
