// Copyright (c) 2026 Sajag Subedi. All rights reserved.

// Package media implements binary asset handling: multipart uploads, per-user
// listings, and event-driven cleanup when the posts referencing an asset are
// deleted.
package media

import "time"

// Media describes one stored binary asset. The bytes themselves live in the
// blob store; this record is the queryable metadata.
type Media struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"created_at"`
}

// # Upload Policy

const (
	// MaxUploadBytes caps a single multipart upload.
	MaxUploadBytes = 10 << 20 // 10 MiB

	// UploadFormField is the multipart field carrying the file.
	UploadFormField = "file"
)

// # Cleanup Policy

const (
	// CleanupConcurrency bounds how many assets one deletion event may
	// remove in parallel.
	CleanupConcurrency = 4
)

// # Field Identifiers

const (
	FieldFile    = "file"
	FieldMediaID = "mediaId"
)
