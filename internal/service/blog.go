package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nencyajudiya/blogstream/internal/apperror"
	"github.com/nencyajudiya/blogstream/internal/model"
	"github.com/nencyajudiya/blogstream/internal/repository"
)

const (
	MaxBlogTitleLength = 200
	DefaultListLimit   = 20
	MaxListLimit       = 100
)

// FileRemover deletes a previously stored upload by its public URL.
// The upload store implements it; tests pass a recording fake or nil.
type FileRemover interface {
	Remove(url string) error
}

// BlogService handles blog CRUD and enforces ownership: only the author of
// a blog may update or delete it.
type BlogService struct {
	blogs  repository.BlogRepository
	files  FileRemover // may be nil; image cleanup is skipped then
	logger *slog.Logger
}

// NewBlogService creates a BlogService.
func NewBlogService(blogs repository.BlogRepository, files FileRemover, logger *slog.Logger) *BlogService {
	return &BlogService{
		blogs:  blogs,
		files:  files,
		logger: logger,
	}
}

// Create validates and saves a new blog owned by authorID.
func (s *BlogService) Create(ctx context.Context, authorID, title, description, status, imageURL string) (*model.Blog, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxBlogTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxBlogTitleLength))
	}
	if description == "" {
		return nil, apperror.ValidationFailed("description", "description is required")
	}
	if status == "" {
		status = model.BlogStatusDraft
	}
	if status != model.BlogStatusDraft && status != model.BlogStatusPublished {
		return nil, apperror.ValidationFailed("status", "status must be draft or published")
	}

	blog := &model.Blog{
		Title:       title,
		Description: description,
		Status:      status,
		ImageURL:    imageURL,
		AuthorID:    authorID,
	}
	if err := s.blogs.CreateBlog(ctx, blog); err != nil {
		s.logger.Error("failed to create blog",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating blog: %w", err)
	}

	s.logger.Info("blog created",
		slog.String("id", blog.ID),
		slog.String("authorID", authorID),
	)

	return blog, nil
}

// GetByID retrieves a blog by its ID.
func (s *BlogService) GetByID(ctx context.Context, id string) (*model.Blog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "blog ID is required")
	}
	return s.blogs.GetBlogByID(ctx, id)
}

// List retrieves blogs newest-first with pagination. The limit is clamped
// so a caller can't request unbounded rows.
func (s *BlogService) List(ctx context.Context, limit, offset int) ([]model.Blog, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	blogs, err := s.blogs.ListBlogs(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list blogs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing blogs: %w", err)
	}
	return blogs, nil
}

// ListByAuthor retrieves one author's blogs newest-first.
func (s *BlogService) ListByAuthor(ctx context.Context, authorID string) ([]model.Blog, error) {
	blogs, err := s.blogs.ListBlogsByAuthor(ctx, authorID)
	if err != nil {
		s.logger.Error("failed to list author blogs",
			slog.String("authorID", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing blogs for author %s: %w", authorID, err)
	}
	return blogs, nil
}

// Update modifies a blog. actorID must be the blog's author; anyone else
// gets Forbidden. Empty title/description/status mean "leave unchanged".
// A non-empty imageURL replaces the stored image and removes the old file.
func (s *BlogService) Update(ctx context.Context, id, actorID, title, description, status, imageURL string) (*model.Blog, error) {
	blog, err := s.blogs.GetBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if blog.AuthorID != actorID {
		return nil, apperror.Forbidden("only the author may update this blog")
	}

	if title = strings.TrimSpace(title); title != "" {
		if len(title) > MaxBlogTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxBlogTitleLength))
		}
		blog.Title = title
	}
	if description = strings.TrimSpace(description); description != "" {
		blog.Description = description
	}
	if status != "" {
		if status != model.BlogStatusDraft && status != model.BlogStatusPublished {
			return nil, apperror.ValidationFailed("status", "status must be draft or published")
		}
		blog.Status = status
	}
	if imageURL != "" {
		s.removeFile(blog.ImageURL)
		blog.ImageURL = imageURL
	}

	if err := s.blogs.UpdateBlog(ctx, blog); err != nil {
		s.logger.Error("failed to update blog",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating blog: %w", err)
	}

	s.logger.Info("blog updated", slog.String("id", blog.ID))

	return blog, nil
}

// Delete removes a blog and its stored image. actorID must be the author.
// The blog's comments go with it via the repository's cascade.
func (s *BlogService) Delete(ctx context.Context, id, actorID string) error {
	blog, err := s.blogs.GetBlogByID(ctx, id)
	if err != nil {
		return err
	}

	if blog.AuthorID != actorID {
		return apperror.Forbidden("only the author may delete this blog")
	}

	if err := s.blogs.DeleteBlog(ctx, id); err != nil {
		return err
	}

	s.removeFile(blog.ImageURL)

	s.logger.Info("blog deleted", slog.String("id", id))
	return nil
}

// removeFile is best-effort: a stale image on disk is not worth failing the
// request over.
func (s *BlogService) removeFile(url string) {
	if s.files == nil || url == "" {
		return
	}
	if err := s.files.Remove(url); err != nil {
		s.logger.Warn("failed to remove stored file",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}
