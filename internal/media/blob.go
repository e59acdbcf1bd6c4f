// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BlobStore persists and removes raw asset bytes, keyed by media ID.
//
// Implementations must make Delete idempotent: removing an absent blob is
// success, because cleanup events are delivered at least once.
type BlobStore interface {
	// Save streams reader to durable storage under id and returns the
	// number of bytes written.
	Save(context context.Context, id string, reader io.Reader) (int64, error)

	// Delete removes the blob stored under id, if any.
	Delete(context context.Context, id string) error
}

// FilesystemBlobStore implements [BlobStore] on a local directory. One file
// per asset, named by media ID.
type FilesystemBlobStore struct {
	rootDir string
}

// NewFilesystemBlobStore creates the root directory if needed and returns a
// store over it.
func NewFilesystemBlobStore(rootDir string) (*FilesystemBlobStore, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("media: blob root creation failed: %w", err)
	}
	return &FilesystemBlobStore{rootDir: rootDir}, nil
}

// Save implements [BlobStore]. The write goes to a temp file first and is
// renamed into place, so a crashed upload never leaves a half-written asset
// under its final name.
func (store *FilesystemBlobStore) Save(_ context.Context, id string, reader io.Reader) (int64, error) {
	finalPath := store.path(id)

	temp, err := os.CreateTemp(store.rootDir, id+".partial-*")
	if err != nil {
		return 0, fmt.Errorf("media: blob temp creation failed: %w", err)
	}

	written, err := io.Copy(temp, reader)
	if closeErr := temp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(temp.Name())
		return 0, fmt.Errorf("media: blob write failed: %w", err)
	}

	if err := os.Rename(temp.Name(), finalPath); err != nil {
		_ = os.Remove(temp.Name())
		return 0, fmt.Errorf("media: blob rename failed: %w", err)
	}

	return written, nil
}

// Delete implements [BlobStore].
func (store *FilesystemBlobStore) Delete(_ context.Context, id string) error {
	err := os.Remove(store.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("media: blob delete failed: %w", err)
	}
	return nil
}

// path resolves the on-disk location for a media ID.
func (store *FilesystemBlobStore) path(id string) string {
	return filepath.Join(store.rootDir, id)
}
