package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nencyajudiya/blogstream/internal/service"
	"github.com/nencyajudiya/blogstream/internal/upload"
)

// CommentHandler owns the comment endpoints. Creation is the trigger for
// the realtime broadcast, but that happens inside the service — by the time
// this handler writes a response, the comment is persisted and announced.
type CommentHandler struct {
	comments *service.CommentService
	uploads  *upload.Store
	logger   *slog.Logger
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(comments *service.CommentService, uploads *upload.Store, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		uploads:  uploads,
		logger:   logger,
	}
}

// HandleList returns a blog's comments newest-first.
//
// HTTP: GET /api/comments/{blogId}
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByBlog(r.Context(), chi.URLParam(r, "blogId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// HandleCreate adds a comment to a blog.
//
// HTTP: POST /api/comments (gated, multipart)
// Fields: blogId, text (or its legacy alias "comment"), attachment? (file)
//
// A failed persist — including a blogId that doesn't resolve — produces an
// error response and no broadcast.
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	if err := parseForm(r); err != nil {
		writeError(w, err)
		return
	}

	text := r.FormValue("text")
	if text == "" {
		text = r.FormValue("comment")
	}

	attachmentURL, err := saveFormFile(r, "attachment", h.uploads)
	if err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(),
		r.FormValue("blogId"),
		identity,
		text,
		attachmentURL,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}
