// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage implements all of them on one DB
// handle; tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/nencyajudiya/blogstream/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository persists account records.
type UserRepository interface {
	// CreateUser inserts a new account. Returns apperror.ErrConflict if the
	// email is already in use.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateUser persists profile changes (name, avatar).
	UpdateUser(ctx context.Context, user *model.User) error
	// UpsertUserByGitHubID inserts on first OAuth login and refreshes the
	// profile on subsequent logins, keyed by the stable GitHub user ID.
	UpsertUserByGitHubID(ctx context.Context, user *model.User) error
}

// BlogRepository persists blog posts. Reads populate the Author reference.
type BlogRepository interface {
	CreateBlog(ctx context.Context, blog *model.Blog) error
	GetBlogByID(ctx context.Context, id string) (*model.Blog, error)
	ListBlogs(ctx context.Context, opts ListOptions) ([]model.Blog, error)
	ListBlogsByAuthor(ctx context.Context, authorID string) ([]model.Blog, error)
	UpdateBlog(ctx context.Context, blog *model.Blog) error
	// DeleteBlog removes a blog and, via foreign-key cascade, its comments.
	DeleteBlog(ctx context.Context, id string) error
}

// CommentRepository persists comments. Reads populate the User reference.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListCommentsByBlog(ctx context.Context, blogID string) ([]model.Comment, error)
}
