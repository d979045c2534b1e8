// Package seed loads the demo data set the site renders from.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/renderlab/renderlab/internal/auth"
	"github.com/renderlab/renderlab/internal/model"
	"github.com/renderlab/renderlab/internal/repository"
)

// Result reports what a seed run inserted.
type Result struct {
	Users int
	Posts int
}

type seedUser struct {
	name     string
	email    string
	password string
}

type seedPost struct {
	authorEmail string
	title       string
	content     string
	published   int
}

var users = []seedUser{
	{name: "Ada Lovelace", email: "ada@example.com", password: "analytical-engine"},
	{name: "Grace Hopper", email: "grace@example.com", password: "nanoseconds"},
}

var posts = []seedPost{
	{
		authorEmail: "ada@example.com",
		title:       "Static rendering explained",
		content:     "Pages built once at startup serve the same bytes to everyone. They are fast and predictable, and they go stale the moment the data changes.",
		published:   model.PostPublished,
	},
	{
		authorEmail: "grace@example.com",
		title:       "Revalidation without downtime",
		content:     "Serving a stale page while a fresh one renders in the background trades a little staleness for a lot of latency. The revalidation window bounds how stale a reader can get.",
		published:   model.PostPublished,
	},
	{
		authorEmail: "ada@example.com",
		title:       "When to render per request",
		content:     "Some pages cannot tolerate staleness at all. Rendering on every request costs a database round trip but the reader always sees current data.",
		published:   model.PostPublished,
	},
	{
		authorEmail: "grace@example.com",
		title:       "Draft: cache key design notes",
		content:     "Working notes on keying cached pages by path. Not ready to publish.",
		published:   model.PostDraft,
	},
	{
		authorEmail: "ada@example.com",
		title:       "Draft: measuring render latency",
		content:     "Half-finished thoughts on what the render duration histogram should bucket.",
		published:   model.PostDraft,
	},
}

// Run wipes the blog tables and inserts the demo users and posts.
// Running it again produces the same counts, so it is safe to re-run.
func Run(ctx context.Context, repo *repository.Repository, logger *slog.Logger) (*Result, error) {
	// Posts first, the foreign key blocks deleting users otherwise.
	if err := repo.DeleteAllPosts(ctx); err != nil {
		return nil, fmt.Errorf("clear posts: %w", err)
	}
	if err := repo.DeleteAllUsers(ctx); err != nil {
		return nil, fmt.Errorf("clear users: %w", err)
	}

	now := time.Now().UTC()
	userIDs := make(map[string]string, len(users))

	for _, u := range users {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", u.email, err)
		}

		user := &model.User{
			ID:           uuid.New().String(),
			Name:         u.name,
			Email:        u.email,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("insert user %s: %w", u.email, err)
		}

		userIDs[u.email] = user.ID
		logger.Info("seeded user", "email", u.email)
	}

	for i, p := range posts {
		// Staggered timestamps keep the listing order deterministic.
		createdAt := now.Add(time.Duration(i) * time.Minute)

		post := &model.Post{
			ID:        uuid.New().String(),
			UserID:    userIDs[p.authorEmail],
			Title:     p.title,
			Content:   p.content,
			Published: p.published,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}
		if err := repo.CreatePost(ctx, post); err != nil {
			return nil, fmt.Errorf("insert post %q: %w", p.title, err)
		}

		logger.Info("seeded post", "title", p.title, "published", p.published)
	}

	return &Result{Users: len(users), Posts: len(posts)}, nil
}
