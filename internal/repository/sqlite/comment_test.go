package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nencyajudiya/blogstream/internal/model"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateComment(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Alice", "alice@example.com")
	blog := createTestBlog(t, db, author.ID, "a post")

	comment := &model.Comment{
		BlogID: blog.ID,
		UserID: author.ID,
		Text:   "great write-up",
	}

	if err := db.CreateComment(context.Background(), comment); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	if comment.ID == "" {
		t.Error("CreateComment() did not set comment.ID")
	}
	if comment.CreatedAt.IsZero() {
		t.Error("CreateComment() did not set comment.CreatedAt")
	}
}

// The blog_id foreign key must hold — a comment can't reference a blog that
// doesn't exist, even if the service-level check were bypassed.
func TestCreateComment_MissingBlog(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Alice", "alice@example.com")

	comment := &model.Comment{
		BlogID: "no-such-blog",
		UserID: author.ID,
		Text:   "orphan",
	}

	if err := db.CreateComment(context.Background(), comment); err == nil {
		t.Fatal("CreateComment() should fail for a nonexistent blog")
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestListCommentsByBlog_Empty(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Alice", "alice@example.com")
	blog := createTestBlog(t, db, author.ID, "quiet post")

	comments, err := db.ListCommentsByBlog(context.Background(), blog.ID)
	if err != nil {
		t.Fatalf("ListCommentsByBlog() error = %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("ListCommentsByBlog() returned %d comments, want 0", len(comments))
	}
}

func TestListCommentsByBlog_PopulatesUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "Alice", "alice@example.com")
	commenter := createTestUser(t, db, "Bob", "bob@example.com")
	blog := createTestBlog(t, db, author.ID, "a post")

	comment := &model.Comment{BlogID: blog.ID, UserID: commenter.ID, Text: "hello"}
	if err := db.CreateComment(ctx, comment); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	comments, err := db.ListCommentsByBlog(ctx, blog.ID)
	if err != nil {
		t.Fatalf("ListCommentsByBlog() error = %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(comments))
	}

	if comments[0].User == nil {
		t.Fatal("ListCommentsByBlog() did not populate User")
	}
	if comments[0].User.Name != "Bob" {
		t.Errorf("User.Name = %q, want %q", comments[0].User.Name, "Bob")
	}
}

func TestListCommentsByBlog_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "Alice", "alice@example.com")
	blog := createTestBlog(t, db, author.ID, "a post")

	for i := 0; i < 3; i++ {
		c := &model.Comment{BlogID: blog.ID, UserID: author.ID, Text: fmt.Sprintf("comment %d", i)}
		if err := db.CreateComment(ctx, c); err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
		time.Sleep(5 * time.Millisecond) // distinct created_at timestamps
	}

	comments, err := db.ListCommentsByBlog(ctx, blog.ID)
	if err != nil {
		t.Fatalf("ListCommentsByBlog() error = %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(comments))
	}

	if comments[0].Text != "comment 2" || comments[2].Text != "comment 0" {
		t.Errorf("order = [%q %q %q], want newest first",
			comments[0].Text, comments[1].Text, comments[2].Text)
	}
}

func TestListCommentsByBlog_ScopedToBlog(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "Alice", "alice@example.com")
	blog1 := createTestBlog(t, db, author.ID, "post one")
	blog2 := createTestBlog(t, db, author.ID, "post two")

	c1 := &model.Comment{BlogID: blog1.ID, UserID: author.ID, Text: "on one"}
	c2 := &model.Comment{BlogID: blog2.ID, UserID: author.ID, Text: "on two"}
	if err := db.CreateComment(ctx, c1); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if err := db.CreateComment(ctx, c2); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	comments, err := db.ListCommentsByBlog(ctx, blog1.ID)
	if err != nil {
		t.Fatalf("ListCommentsByBlog() error = %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(comments))
	}
	if comments[0].Text != "on one" {
		t.Errorf("Text = %q, want %q", comments[0].Text, "on one")
	}
}
