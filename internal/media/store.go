// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package media

import "context"

// Repository defines the data access contract for media metadata.
type Repository interface {
	// Create persists a brand-new media record.
	Create(context context.Context, media *Media) error

	// FindByID returns the record with the given ID, or apperr.NotFound.
	FindByID(context context.Context, id string) (*Media, error)

	// ListByUser returns one page of records owned by userID, newest first,
	// along with the owner's total record count.
	ListByUser(context context.Context, userID string, limit, offset int) ([]*Media, int, error)

	// Delete removes a record. Deleting an absent record is not an error;
	// cleanup events are delivered at least once and must stay idempotent.
	Delete(context context.Context, id string) error
}
