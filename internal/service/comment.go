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

const MaxCommentLength = 2000

// Broadcaster announces persisted comments to realtime subscribers.
// The realtime hub implements it; tests use a recording fake.
type Broadcaster interface {
	Publish(blogID string, event model.CommentEvent)
}

// CommentService handles comment creation and listing, and announces each
// successfully persisted comment to the blog's room.
type CommentService struct {
	comments repository.CommentRepository
	blogs    repository.BlogRepository
	hub      Broadcaster
	logger   *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	comments repository.CommentRepository,
	blogs repository.BlogRepository,
	hub Broadcaster,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		blogs:    blogs,
		hub:      hub,
		logger:   logger,
	}
}

// Create validates, persists, and then broadcasts a new comment by author
// on the given blog.
//
// Ordering matters here: the write must succeed before the hub is invoked.
// Any failure — missing blog, store error — returns without publishing, so
// subscribers never hear about a comment that isn't in the database.
func (s *CommentService) Create(ctx context.Context, blogID string, author *model.User, text, attachmentURL string) (*model.Comment, error) {
	text = strings.TrimSpace(text)

	if blogID == "" {
		return nil, apperror.ValidationFailed("blogId", "blog ID is required")
	}
	if text == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}
	if len(text) > MaxCommentLength {
		return nil, apperror.ValidationFailed("text",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	// The referenced blog must exist; NotFound propagates as-is.
	if _, err := s.blogs.GetBlogByID(ctx, blogID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		BlogID:        blogID,
		UserID:        author.ID,
		Text:          text,
		AttachmentURL: attachmentURL,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("blogID", blogID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	comment.User = author.Ref()

	// Persisted — now announce. Delivery problems inside the hub are the
	// hub's to log; this request succeeded the moment the write did.
	s.hub.Publish(blogID, model.EventForComment(comment, author.Name))

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("blogID", blogID),
	)

	return comment, nil
}

// ListByBlog returns a blog's comments newest-first.
func (s *CommentService) ListByBlog(ctx context.Context, blogID string) ([]model.Comment, error) {
	if blogID == "" {
		return nil, apperror.ValidationFailed("blogId", "blog ID is required")
	}

	comments, err := s.comments.ListCommentsByBlog(ctx, blogID)
	if err != nil {
		s.logger.Error("failed to list comments",
			slog.String("blogID", blogID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing comments for blog %s: %w", blogID, err)
	}
	return comments, nil
}
