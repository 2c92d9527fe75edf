package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nencyajudiya/blogstream/internal/apperror"
	"github.com/nencyajudiya/blogstream/internal/model"
	"github.com/nencyajudiya/blogstream/internal/repository"
)

// createTestBlog creates a blog for the given author and fails on error.
func createTestBlog(t *testing.T, db *DB, authorID, title string) *model.Blog {
	t.Helper()
	blog := &model.Blog{
		Title:       title,
		Description: "a description",
		Status:      model.BlogStatusPublished,
		AuthorID:    authorID,
	}
	if err := db.CreateBlog(context.Background(), blog); err != nil {
		t.Fatalf("failed to create test blog: %v", err)
	}
	return blog
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateBlog(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Alice", "alice@example.com")

	blog := &model.Blog{
		Title:       "First Post",
		Description: "Hello world",
		AuthorID:    author.ID,
	}

	if err := db.CreateBlog(context.Background(), blog); err != nil {
		t.Fatalf("CreateBlog() error = %v", err)
	}

	if blog.ID == "" {
		t.Error("CreateBlog() did not set blog.ID")
	}
	if blog.Status != model.BlogStatusDraft {
		t.Errorf("Status = %q, want default %q", blog.Status, model.BlogStatusDraft)
	}
	if blog.CreatedAt.IsZero() {
		t.Error("CreateBlog() did not set blog.CreatedAt")
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestGetBlogByID_PopulatesAuthor(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Alice", "alice@example.com")
	created := createTestBlog(t, db, author.ID, "fetch me")

	found, err := db.GetBlogByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetBlogByID() error = %v", err)
	}

	if found.Title != "fetch me" {
		t.Errorf("Title = %q, want %q", found.Title, "fetch me")
	}
	// Reads join the users table so clients get the author inline.
	if found.Author == nil {
		t.Fatal("GetBlogByID() did not populate Author")
	}
	if found.Author.Name != "Alice" {
		t.Errorf("Author.Name = %q, want %q", found.Author.Name, "Alice")
	}
	if found.Author.ID != author.ID {
		t.Errorf("Author.ID = %q, want %q", found.Author.ID, author.ID)
	}
}

func TestGetBlogByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetBlogByID(context.Background(), "nonexistent-id")

	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetBlogByID() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestListBlogs_Empty(t *testing.T) {
	db := newTestDB(t)

	blogs, err := db.ListBlogs(context.Background(), repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListBlogs() error = %v", err)
	}
	if len(blogs) != 0 {
		t.Errorf("ListBlogs() returned %d blogs, want 0", len(blogs))
	}
}

func TestListBlogs_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Alice", "alice@example.com")

	for i := 0; i < 3; i++ {
		createTestBlog(t, db, author.ID, fmt.Sprintf("post %d", i))
		time.Sleep(5 * time.Millisecond) // distinct created_at timestamps
	}

	blogs, err := db.ListBlogs(context.Background(), repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListBlogs() error = %v", err)
	}
	if len(blogs) != 3 {
		t.Fatalf("ListBlogs() returned %d blogs, want 3", len(blogs))
	}

	if blogs[0].Title != "post 2" || blogs[2].Title != "post 0" {
		t.Errorf("order = [%q %q %q], want newest first",
			blogs[0].Title, blogs[1].Title, blogs[2].Title)
	}
}

func TestListBlogs_Pagination(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Alice", "alice@example.com")

	for i := 0; i < 5; i++ {
		createTestBlog(t, db, author.ID, fmt.Sprintf("post %d", i))
	}

	page1, err := db.ListBlogs(context.Background(), repository.ListOptions{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("ListBlogs() page 1 error = %v", err)
	}
	page2, err := db.ListBlogs(context.Background(), repository.ListOptions{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListBlogs() page 2 error = %v", err)
	}

	if len(page1) != 2 || len(page2) != 2 {
		t.Fatalf("page sizes = %d, %d; want 2, 2", len(page1), len(page2))
	}
	if page1[0].ID == page2[0].ID {
		t.Error("pages overlap: same blog on page 1 and page 2")
	}
}

func TestListBlogsByAuthor(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")

	createTestBlog(t, db, alice.ID, "alice post 1")
	createTestBlog(t, db, alice.ID, "alice post 2")
	createTestBlog(t, db, bob.ID, "bob post")

	blogs, err := db.ListBlogsByAuthor(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListBlogsByAuthor() error = %v", err)
	}

	if len(blogs) != 2 {
		t.Fatalf("ListBlogsByAuthor() returned %d blogs, want 2", len(blogs))
	}
	for _, b := range blogs {
		if b.AuthorID != alice.ID {
			t.Errorf("blog %q has author %q, want %q", b.Title, b.AuthorID, alice.ID)
		}
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdateBlog(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Alice", "alice@example.com")
	blog := createTestBlog(t, db, author.ID, "original title")

	blog.Title = "updated title"
	blog.Status = model.BlogStatusDraft

	if err := db.UpdateBlog(context.Background(), blog); err != nil {
		t.Fatalf("UpdateBlog() error = %v", err)
	}

	found, err := db.GetBlogByID(context.Background(), blog.ID)
	if err != nil {
		t.Fatalf("GetBlogByID() after update error = %v", err)
	}
	if found.Title != "updated title" {
		t.Errorf("Title = %q, want %q", found.Title, "updated title")
	}
	if found.Status != model.BlogStatusDraft {
		t.Errorf("Status = %q, want %q", found.Status, model.BlogStatusDraft)
	}
}

func TestUpdateBlog_NotFound(t *testing.T) {
	db := newTestDB(t)

	blog := &model.Blog{ID: "nonexistent", Title: "x", Description: "y", Status: model.BlogStatusDraft}
	err := db.UpdateBlog(context.Background(), blog)

	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateBlog() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDeleteBlog(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Alice", "alice@example.com")
	blog := createTestBlog(t, db, author.ID, "to delete")

	if err := db.DeleteBlog(context.Background(), blog.ID); err != nil {
		t.Fatalf("DeleteBlog() error = %v", err)
	}

	_, err := db.GetBlogByID(context.Background(), blog.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetBlogByID() after delete: error = %v, want ErrNotFound", err)
	}
}

func TestDeleteBlog_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteBlog(context.Background(), "nonexistent-id")

	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteBlog() error = %v, want ErrNotFound", err)
	}
}

// Deleting a blog takes its comments with it via the foreign-key cascade.
func TestDeleteBlog_CascadesComments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "Alice", "alice@example.com")
	blog := createTestBlog(t, db, author.ID, "commented")

	comment := &model.Comment{BlogID: blog.ID, UserID: author.ID, Text: "nice post"}
	if err := db.CreateComment(ctx, comment); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	if err := db.DeleteBlog(ctx, blog.ID); err != nil {
		t.Fatalf("DeleteBlog() error = %v", err)
	}

	comments, err := db.ListCommentsByBlog(ctx, blog.ID)
	if err != nil {
		t.Fatalf("ListCommentsByBlog() error = %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comments survived blog deletion: %d left, want 0", len(comments))
	}
}
