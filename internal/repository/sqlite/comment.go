package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/nencyajudiya/blogstream/internal/model"
	"github.com/nencyajudiya/blogstream/internal/repository"
)

// compile-time check that *DB implements repository.CommentRepository
var _ repository.CommentRepository = (*DB)(nil)

// CreateComment inserts a comment with a generated ID and timestamps.
// The blog_id foreign key rejects comments on blogs that don't exist, but
// the service checks first so the caller gets a NotFound instead of a
// constraint error.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	now := time.Now()
	comment.ID = xid.New().String()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, blog_id, user_id, text, attachment_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.BlogID,
		comment.UserID,
		comment.Text,
		comment.AttachmentURL,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment on blog %s: %w", comment.BlogID, err)
	}

	return nil
}

// ListCommentsByBlog returns a blog's comments newest-first with the
// commenting user populated.
func (db *DB) ListCommentsByBlog(ctx context.Context, blogID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.blog_id, c.user_id, c.text, c.attachment_url,
		        c.created_at, c.updated_at, u.id, u.name, u.email
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.blog_id = ?
		 ORDER BY c.created_at DESC, c.id DESC`,
		blogID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for blog %s: %w", blogID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var user model.UserRef
		err := rows.Scan(
			&c.ID,
			&c.BlogID,
			&c.UserID,
			&c.Text,
			&c.AttachmentURL,
			&c.CreatedAt,
			&c.UpdatedAt,
			&user.ID,
			&user.Name,
			&user.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		c.User = &user
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comment rows: %w", err)
	}

	return comments, nil
}
