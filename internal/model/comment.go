package model

import "time"

// Comment represents a comment on a blog post. AttachmentURL is empty when
// the comment has no uploaded attachment. User is populated on reads.
type Comment struct {
	ID            string    `json:"id"`
	BlogID        string    `json:"blogId"`
	UserID        string    `json:"userId"`
	Text          string    `json:"text"`
	AttachmentURL string    `json:"attachmentUrl,omitempty"`
	User          *UserRef  `json:"user,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CommentEvent is the payload broadcast to realtime subscribers when a
// comment has been persisted. It exists only on the wire — nothing stores it.
type CommentEvent struct {
	BlogID        string    `json:"blogId"`
	CommentID     string    `json:"commentId"`
	AuthorName    string    `json:"authorName"`
	Text          string    `json:"text"`
	AttachmentURL string    `json:"attachmentUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// EventForComment builds the broadcast payload for a persisted comment.
func EventForComment(c *Comment, authorName string) CommentEvent {
	return CommentEvent{
		BlogID:        c.BlogID,
		CommentID:     c.ID,
		AuthorName:    authorName,
		Text:          c.Text,
		AttachmentURL: c.AttachmentURL,
		CreatedAt:     c.CreatedAt,
	}
}
