//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/renderlab/renderlab/internal/model"
	"github.com/renderlab/renderlab/internal/testutil"
)

// newTestEnv connects to the test database, serializes access via an
// advisory lock and resets the blog schema.
func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "DATABASE_URL")
	ctx := context.Background()

	repo, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect database: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Errorf("release db lock: %v", err)
		}
	})

	if err := testutil.ResetBlogSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

// mustCreateUser inserts a user or fails the test.
func mustCreateUser(t *testing.T, ctx context.Context, repo *Repository, email string) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t, email)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)

	email := testutil.UniqueEmail("create")
	user := mustCreateUser(t, ctx, repo, email)

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if retrieved.Email != email {
		t.Errorf("Email mismatch: got %q, want %q", retrieved.Email, email)
	}

	byEmail, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", byEmail.ID, user.ID)
	}
}

func TestIntegrationUserRepository_DuplicateEmail(t *testing.T) {
	ctx, repo := newTestEnv(t)

	email := testutil.UniqueEmail("dup")
	mustCreateUser(t, ctx, repo, email)

	second := testutil.NewTestUser(t, email)
	err := repo.CreateUser(ctx, second)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_GetByID_NotFound(t *testing.T) {
	ctx, repo := newTestEnv(t)

	_, err := repo.GetUserByID(ctx, uuid.New().String())
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_DeleteReferencedUser(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := mustCreateUser(t, ctx, repo, testutil.UniqueEmail("ref"))
	post := testutil.NewTestPost(t, user.ID, "Referenced")
	if err := repo.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	// No ON DELETE cascade: the database must block this.
	err := repo.DeleteUser(ctx, user.ID)
	if !errors.Is(err, ErrUserReferenced) {
		t.Errorf("Expected ErrUserReferenced, got: %v", err)
	}
}

// ============================================================================
// Post Repository Integration Tests
// ============================================================================

func TestIntegrationPostRepository_CreateWithValidUser(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := mustCreateUser(t, ctx, repo, testutil.UniqueEmail("owner"))
	post := testutil.NewTestPost(t, user.ID, "Hello")

	if err := repo.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	retrieved, err := repo.GetPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPostByID failed: %v", err)
	}
	if retrieved.Title != "Hello" {
		t.Errorf("Title mismatch: got %q", retrieved.Title)
	}
	if retrieved.Author != user.Name {
		t.Errorf("Author mismatch: got %q, want %q", retrieved.Author, user.Name)
	}
}

func TestIntegrationPostRepository_CreateWithUnknownUser(t *testing.T) {
	ctx, repo := newTestEnv(t)

	post := testutil.NewTestPost(t, uuid.New().String(), "Orphan")
	err := repo.CreatePost(ctx, post)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound (FK violation), got: %v", err)
	}
}

func TestIntegrationPostRepository_GetByID_NotFound(t *testing.T) {
	ctx, repo := newTestEnv(t)

	_, err := repo.GetPostByID(ctx, uuid.New().String())
	if !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound, got: %v", err)
	}
}

func TestIntegrationPostRepository_GetByID_InvalidUUID(t *testing.T) {
	ctx, repo := newTestEnv(t)

	// A malformed uuid must read as not found, not as a query error.
	_, err := repo.GetPostByID(ctx, "not-a-uuid")
	if !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound for invalid uuid, got: %v", err)
	}
}

func TestIntegrationPostRepository_ListPublishedOrdering(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := mustCreateUser(t, ctx, repo, testutil.UniqueEmail("list"))

	base := time.Now().UTC().Add(-time.Hour)
	titles := []string{"first", "second", "third"}

	// 3 published posts with ascending created_at, inserted out of order.
	for _, idx := range []int{2, 0, 1} {
		post := testutil.NewTestPost(t, user.ID, titles[idx])
		post.CreatedAt = base.Add(time.Duration(idx) * time.Minute)
		post.UpdatedAt = post.CreatedAt
		if err := repo.CreatePost(ctx, post); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	// 2 drafts that must not appear.
	for i := 0; i < 2; i++ {
		draft := testutil.NewTestPost(t, user.ID, "draft")
		draft.Published = model.PostDraft
		if err := repo.CreatePost(ctx, draft); err != nil {
			t.Fatalf("CreatePost (draft) failed: %v", err)
		}
	}

	posts, err := repo.ListPublishedPosts(ctx)
	if err != nil {
		t.Fatalf("ListPublishedPosts failed: %v", err)
	}

	if len(posts) != 3 {
		t.Fatalf("Expected 3 published posts, got %d", len(posts))
	}
	for i, want := range titles {
		if posts[i].Title != want {
			t.Errorf("posts[%d].Title = %q, want %q", i, posts[i].Title, want)
		}
		if !posts[i].IsPublished() {
			t.Errorf("posts[%d] should be published", i)
		}
	}
}

func TestIntegrationPostRepository_Counts(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := mustCreateUser(t, ctx, repo, testutil.UniqueEmail("count"))
	for i := 0; i < 4; i++ {
		post := testutil.NewTestPost(t, user.ID, "post")
		if err := repo.CreatePost(ctx, post); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	users, err := repo.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	if users != 1 {
		t.Errorf("CountUsers = %d, want 1", users)
	}

	posts, err := repo.CountPosts(ctx)
	if err != nil {
		t.Fatalf("CountPosts failed: %v", err)
	}
	if posts != 4 {
		t.Errorf("CountPosts = %d, want 4", posts)
	}
}
