// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package media

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

// NewRepository creates a new PostgreSQL implementation of the media Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create implements [Repository].
func (repository *PostgresRepository) Create(context context.Context, media *Media) error {
	const query = `
		INSERT INTO media (id, user_id, original_name, mime_type, size_bytes, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		media.ID,
		media.UserID,
		media.OriginalName,
		media.MimeType,
		media.SizeBytes,
		media.URL,
		media.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_media_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Media, error) {
	const query = `
		SELECT id, user_id, original_name, mime_type, size_bytes, url, created_at
		FROM media
		WHERE id = $1`

	media := &Media{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&media.ID,
		&media.UserID,
		&media.OriginalName,
		&media.MimeType,
		&media.SizeBytes,
		&media.URL,
		&media.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Media")
		}
		return nil, fmt.Errorf("postgres_media_repo_find_failed: %w", err)
	}

	return media, nil
}

// ListByUser implements [Repository].
func (repository *PostgresRepository) ListByUser(context context.Context, userID string, limit, offset int) ([]*Media, int, error) {
	const countQuery = `SELECT COUNT(*) FROM media WHERE user_id = $1`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_media_repo_count_failed: %w", err)
	}

	const query = `
		SELECT id, user_id, original_name, mime_type, size_bytes, url, created_at
		FROM media
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_media_repo_list_failed: %w", err)
	}
	defer rows.Close()

	assets := []*Media{}
	for rows.Next() {
		media := &Media{}
		err := rows.Scan(
			&media.ID,
			&media.UserID,
			&media.OriginalName,
			&media.MimeType,
			&media.SizeBytes,
			&media.URL,
			&media.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_media_repo_scan_failed: %w", err)
		}
		assets = append(assets, media)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_media_repo_rows_failed: %w", err)
	}

	return assets, total, nil
}

// Delete implements [Repository]. Zero rows affected is success: the record
// was already gone.
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM media WHERE id = $1`

	if _, err := repository.pool.Exec(context, query, id); err != nil {
		return fmt.Errorf("postgres_media_repo_delete_failed: %w", err)
	}

	return nil
}
