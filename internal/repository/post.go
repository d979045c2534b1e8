package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/renderlab/renderlab/internal/model"
)

// Common errors for post repository operations.
var (
	ErrPostNotFound = errors.New("post not found")
)

// CreatePost inserts a new post into the database.
// The owning user must exist; a missing user surfaces as ErrUserNotFound.
func (r *Repository) CreatePost(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (id, user_id, title, content, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.UserID,
		post.Title,
		post.Content,
		post.Published,
		post.CreatedAt,
		post.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// GetPostByID retrieves a post by its ID with the author name joined.
// A syntactically invalid uuid is reported as not found, not as a query error.
func (r *Repository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.title, p.content, p.published, p.created_at, p.updated_at, u.name
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`

	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}

	return post, nil
}

// ListPublishedPosts retrieves all published posts ordered by creation time
// ascending, with author names joined. This backs every listing page.
func (r *Repository) ListPublishedPosts(ctx context.Context) ([]*model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.title, p.content, p.published, p.created_at, p.updated_at, u.name
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.published = 1
		ORDER BY p.created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list published posts: %w", err)
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// DeleteAllPosts removes every post row. Used by the seed tool.
// Posts go first so the users delete is not blocked by the foreign key.
func (r *Repository) DeleteAllPosts(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM posts`); err != nil {
		return fmt.Errorf("failed to delete posts: %w", err)
	}
	return nil
}

// CountPosts returns the number of post rows.
func (r *Repository) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// scanPost scans a single row into a Post model.
func scanPost(row pgx.Row) (*model.Post, error) {
	var post model.Post
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Title,
		&post.Content,
		&post.Published,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.Author,
	)
	return &post, err
}
