// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package post

import "context"

// Repository defines the data access contract for posts.
type Repository interface {
	// Create persists a brand-new post.
	Create(context context.Context, post *Post) error

	// FindByID returns the post with the given ID, or apperr.NotFound.
	FindByID(context context.Context, id string) (*Post, error)

	// List returns one page of posts ordered newest first, plus the total
	// count across all pages.
	List(context context.Context, limit, offset int) ([]*Post, int, error)

	// DeleteOwned removes the post only when it belongs to userID. It
	// returns the deleted post's media IDs, or apperr.NotFound when no
	// row matched the (id, userID) pair.
	DeleteOwned(context context.Context, id, userID string) ([]string, error)
}
