package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nencyajudiya/blogstream/internal/service"
	"github.com/nencyajudiya/blogstream/internal/upload"
)

// BlogHandler owns the blog CRUD endpoints. The multipart field names
// (blog_title, blog_description, blog_status, blog_image) are the wire
// format existing clients already speak.
type BlogHandler struct {
	blogs   *service.BlogService
	uploads *upload.Store
	logger  *slog.Logger
}

// NewBlogHandler creates a BlogHandler.
func NewBlogHandler(blogs *service.BlogService, uploads *upload.Store, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{
		blogs:   blogs,
		uploads: uploads,
		logger:  logger,
	}
}

// HandleList returns blogs newest-first.
//
// HTTP: GET /api/blogs?limit=20&offset=0
func (h *BlogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	blogs, err := h.blogs.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blogs)
}

// HandleGet returns one blog with its author populated.
//
// HTTP: GET /api/blogs/{id}
func (h *BlogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blog)
}

// HandleListMine returns the authenticated author's own blogs.
//
// HTTP: GET /api/blogs/user/me (gated)
func (h *BlogHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	blogs, err := h.blogs.ListByAuthor(r.Context(), identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blogs)
}

// HandleCreate creates a blog owned by the authenticated user.
//
// HTTP: POST /api/blogs (gated, multipart)
// Fields: blog_title, blog_description, blog_status?, blog_image? (file)
func (h *BlogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	if err := parseForm(r); err != nil {
		writeError(w, err)
		return
	}

	imageURL, err := saveFormFile(r, "blog_image", h.uploads)
	if err != nil {
		writeError(w, err)
		return
	}

	blog, err := h.blogs.Create(r.Context(),
		identity.ID,
		r.FormValue("blog_title"),
		r.FormValue("blog_description"),
		r.FormValue("blog_status"),
		imageURL,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	blog.Author = identity.Ref()
	writeJSON(w, http.StatusCreated, blog)
}

// HandleUpdate modifies a blog the authenticated user owns. Omitted fields
// are left unchanged; a new blog_image replaces (and deletes) the old one.
//
// HTTP: PUT /api/blogs/{id} (gated, multipart)
func (h *BlogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	if err := parseForm(r); err != nil {
		writeError(w, err)
		return
	}

	imageURL, err := saveFormFile(r, "blog_image", h.uploads)
	if err != nil {
		writeError(w, err)
		return
	}

	blog, err := h.blogs.Update(r.Context(),
		chi.URLParam(r, "id"),
		identity.ID,
		r.FormValue("blog_title"),
		r.FormValue("blog_description"),
		r.FormValue("blog_status"),
		imageURL,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blog)
}

// HandleDelete removes a blog the authenticated user owns.
//
// HTTP: DELETE /api/blogs/{id} (gated)
func (h *BlogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	if err := h.blogs.Delete(r.Context(), chi.URLParam(r, "id"), identity.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "blog removed"})
}
