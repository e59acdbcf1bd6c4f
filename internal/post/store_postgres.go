// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/apperr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the post Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create implements [Repository].
func (repository *PostgresRepository) Create(context context.Context, post *Post) error {
	const query = `
		INSERT INTO posts (id, user_id, content, media_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		post.ID,
		post.UserID,
		post.Content,
		post.MediaIDs,
		post.CreatedAt,
		post.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_post_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Post, error) {
	const query = `
		SELECT id, user_id, content, media_ids, created_at, updated_at
		FROM posts
		WHERE id = $1`

	post := &Post{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&post.ID,
		&post.UserID,
		&post.Content,
		&post.MediaIDs,
		&post.CreatedAt,
		&post.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Post")
		}
		return nil, fmt.Errorf("postgres_post_repo_find_failed: %w", err)
	}

	return post, nil
}

// List implements [Repository]. Posts are ordered newest first; the UUIDv7
// primary key is time-sortable, so ordering by it matches creation order.
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Post, int, error) {
	const countQuery = `SELECT COUNT(*) FROM posts`

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_post_repo_count_failed: %w", err)
	}

	const listQuery = `
		SELECT id, user_id, content, media_ids, created_at, updated_at
		FROM posts
		ORDER BY id DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, listQuery, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_post_repo_list_failed: %w", err)
	}
	defer rows.Close()

	posts := make([]*Post, 0, limit)
	for rows.Next() {
		post := &Post{}
		err := rows.Scan(
			&post.ID,
			&post.UserID,
			&post.Content,
			&post.MediaIDs,
			&post.CreatedAt,
			&post.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_post_repo_scan_failed: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_post_repo_rows_failed: %w", err)
	}

	return posts, total, nil
}

// DeleteOwned implements [Repository]. The ownership predicate is part of the
// DELETE itself so a foreign post and a missing post are indistinguishable.
func (repository *PostgresRepository) DeleteOwned(context context.Context, id, userID string) ([]string, error) {
	const query = `
		DELETE FROM posts
		WHERE id = $1 AND user_id = $2
		RETURNING media_ids`

	var mediaIDs []string
	err := repository.pool.QueryRow(context, query, id, userID).Scan(&mediaIDs)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Post")
		}
		return nil, fmt.Errorf("postgres_post_repo_delete_failed: %w", err)
	}

	return mediaIDs, nil
}
