package handler_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nencyajudiya/blogstream/internal/auth"
	"github.com/nencyajudiya/blogstream/internal/handler"
	"github.com/nencyajudiya/blogstream/internal/model"
	"github.com/nencyajudiya/blogstream/internal/realtime"
	"github.com/nencyajudiya/blogstream/internal/repository/sqlite"
	"github.com/nencyajudiya/blogstream/internal/service"
	"github.com/nencyajudiya/blogstream/internal/upload"
)

// fixture wires real services over an in-memory database — handler tests
// exercise the full stack below the router, with only the HTTP layer faked
// by httptest.
type fixture struct {
	db      *sqlite.DB
	hub     *realtime.Hub
	uploads *upload.Store

	auth     *handler.AuthHandler
	blogs    *handler.BlogHandler
	comments *handler.CommentHandler

	authSvc    *service.AuthService
	blogSvc    *service.BlogService
	commentSvc *service.CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hub := realtime.NewHub(logger)
	t.Cleanup(hub.Close)

	uploads, err := upload.New(t.TempDir(), "http://localhost:8080", logger)
	if err != nil {
		t.Fatalf("upload.New: %v", err)
	}

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("auth.NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(4)

	f := &fixture{
		db:      db,
		hub:     hub,
		uploads: uploads,
	}
	f.authSvc = service.NewAuthService(db, tokens, passwords, logger)
	f.blogSvc = service.NewBlogService(db, uploads, logger)
	f.commentSvc = service.NewCommentService(db, db, hub, logger)

	f.auth = handler.NewAuthHandler(f.authSvc, nil, uploads, logger)
	f.blogs = handler.NewBlogHandler(f.blogSvc, uploads, logger)
	f.comments = handler.NewCommentHandler(f.commentSvc, uploads, logger)

	return f
}

// registerUser creates an account through the service and returns it.
func (f *fixture) registerUser(t *testing.T, name, email string) *model.User {
	t.Helper()
	res, err := f.authSvc.Register(context.Background(), name, email, "secret123")
	if err != nil {
		t.Fatalf("registering %s: %v", email, err)
	}
	return res.User
}

// asUser attaches an authenticated identity to the request, standing in
// for the RequireAuth middleware.
func asUser(req *http.Request, u *model.User) *http.Request {
	return req.WithContext(auth.ContextWithIdentity(req.Context(), u))
}

// withURLParam attaches a chi route parameter so handlers that read
// chi.URLParam work without a full router.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// multipartBody builds a multipart form with the given fields and an
// optional single file part.
func multipartBody(t *testing.T, fields map[string]string, fileField, fileName, fileContent string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("writing field %s: %v", k, err)
		}
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("creating file part: %v", err)
		}
		if _, err := part.Write([]byte(fileContent)); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

// do runs a handler function against a recorded request.
func do(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}
