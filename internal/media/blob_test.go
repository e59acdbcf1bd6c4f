// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package media_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/media"
)

/*
TestFilesystemBlobStore_SaveAndDelete verifies the blob round trip: bytes land
under the media ID, deletion removes them, and deleting again is a no-op.
*/
func TestFilesystemBlobStore_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := media.NewFilesystemBlobStore(root)
	require.NoError(t, err)

	written, err := store.Save(context.Background(), "m1", strings.NewReader("asset bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("asset bytes")), written)

	payload, err := os.ReadFile(filepath.Join(root, "m1"))
	require.NoError(t, err)
	assert.Equal(t, "asset bytes", string(payload))

	require.NoError(t, store.Delete(context.Background(), "m1"))
	_, err = os.Stat(filepath.Join(root, "m1"))
	assert.True(t, os.IsNotExist(err))

	// Idempotent: the blob is already gone.
	require.NoError(t, store.Delete(context.Background(), "m1"))
}

/*
TestFilesystemBlobStore_SaveLeavesNoPartials verifies no temp files survive a
completed save.
*/
func TestFilesystemBlobStore_SaveLeavesNoPartials(t *testing.T) {
	root := t.TempDir()
	store, err := media.NewFilesystemBlobStore(root)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "m1", strings.NewReader("asset bytes"))
	require.NoError(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "m1", entries[0].Name())
}
