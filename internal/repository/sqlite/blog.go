package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/nencyajudiya/blogstream/internal/apperror"
	"github.com/nencyajudiya/blogstream/internal/model"
	"github.com/nencyajudiya/blogstream/internal/repository"
)

// compile-time check that *DB implements repository.BlogRepository
var _ repository.BlogRepository = (*DB)(nil)

// blogSelect joins the author so every read returns a populated Author ref.
const blogSelect = `
	SELECT b.id, b.title, b.description, b.status, b.image_url, b.author_id,
	       b.created_at, b.updated_at, u.id, u.name, u.email
	FROM blogs b
	JOIN users u ON u.id = b.author_id`

// CreateBlog inserts a blog with a generated ID and timestamps.
func (db *DB) CreateBlog(ctx context.Context, blog *model.Blog) error {
	now := time.Now()
	blog.ID = xid.New().String()
	blog.CreatedAt = now
	blog.UpdatedAt = now
	if blog.Status == "" {
		blog.Status = model.BlogStatusDraft
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO blogs (id, title, description, status, image_url, author_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		blog.ID,
		blog.Title,
		blog.Description,
		blog.Status,
		blog.ImageURL,
		blog.AuthorID,
		blog.CreatedAt,
		blog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting blog %q: %w", blog.Title, err)
	}

	return nil
}

// GetBlogByID retrieves a blog with its author populated.
// Returns apperror.ErrNotFound if the blog doesn't exist.
func (db *DB) GetBlogByID(ctx context.Context, id string) (*model.Blog, error) {
	rows, err := db.conn.QueryContext(ctx, blogSelect+` WHERE b.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting blog %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("sqlite: getting blog %s: %w", id, err)
		}
		return nil, apperror.NotFound("blog", id)
	}

	blog, err := scanBlog(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: scanning blog %s: %w", id, err)
	}
	return blog, nil
}

// ListBlogs returns blogs newest-first with pagination.
func (db *DB) ListBlogs(ctx context.Context, opts repository.ListOptions) ([]model.Blog, error) {
	rows, err := db.conn.QueryContext(ctx,
		blogSelect+` ORDER BY b.created_at DESC, b.id DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing blogs: %w", err)
	}
	defer rows.Close()

	return collectBlogs(rows)
}

// ListBlogsByAuthor returns one author's blogs newest-first.
func (db *DB) ListBlogsByAuthor(ctx context.Context, authorID string) ([]model.Blog, error) {
	rows, err := db.conn.QueryContext(ctx,
		blogSelect+` WHERE b.author_id = ? ORDER BY b.created_at DESC, b.id DESC`,
		authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing blogs for author %s: %w", authorID, err)
	}
	defer rows.Close()

	return collectBlogs(rows)
}

// UpdateBlog persists changes to title, description, status, and image.
func (db *DB) UpdateBlog(ctx context.Context, blog *model.Blog) error {
	blog.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE blogs SET title = ?, description = ?, status = ?, image_url = ?, updated_at = ?
		 WHERE id = ?`,
		blog.Title,
		blog.Description,
		blog.Status,
		blog.ImageURL,
		blog.UpdatedAt,
		blog.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating blog %s: %w", blog.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating blog %s: %w", blog.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("blog", blog.ID)
	}

	return nil
}

// DeleteBlog removes a blog. Its comments go with it via the
// ON DELETE CASCADE foreign key.
func (db *DB) DeleteBlog(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM blogs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting blog %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting blog %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("blog", id)
	}

	return nil
}

func scanBlog(rows *sql.Rows) (*model.Blog, error) {
	var b model.Blog
	var author model.UserRef

	err := rows.Scan(
		&b.ID,
		&b.Title,
		&b.Description,
		&b.Status,
		&b.ImageURL,
		&b.AuthorID,
		&b.CreatedAt,
		&b.UpdatedAt,
		&author.ID,
		&author.Name,
		&author.Email,
	)
	if err != nil {
		return nil, err
	}
	b.Author = &author
	return &b, nil
}

func collectBlogs(rows *sql.Rows) ([]model.Blog, error) {
	blogs := []model.Blog{}
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning blog row: %w", err)
		}
		blogs = append(blogs, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating blog rows: %w", err)
	}
	return blogs, nil
}
