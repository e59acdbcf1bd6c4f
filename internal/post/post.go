// Copyright (c) 2026 Sajag Subedi. All rights reserved.

// Package post implements the content domain: creating, reading, and
// deleting posts, with a shared Redis response cache in front of reads.
package post

import "time"

// Post is the central aggregate of the content domain.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	MediaIDs  []string  `json:"media_ids"` // IDs of attached media, owned by the media service.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Cache Policy

const (
	// CacheTTL bounds how stale a cached read can get. Invalidation on write
	// is best effort; the TTL is the hard ceiling.
	CacheTTL = 300 * time.Second
)

// # Input Policy

const (
	// ContentMaxLength caps the size of a single post body.
	ContentMaxLength = 500
)

// # Field Identifiers

const (
	FieldContent  = "content"
	FieldMediaIDs = "mediaIds"
	FieldPostID   = "postId"
)
