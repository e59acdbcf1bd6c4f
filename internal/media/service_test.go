// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package media_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/media"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/apperr"
	"github.com/sajagsubedi/Social-Media-Microservice/pkg/pagination"
)

// # Test Doubles

// fakeRepository is an in-memory media Repository. Deletion of an absent
// row succeeds, matching the real store.
type fakeRepository struct {
	mu         sync.Mutex
	assets     map[string]*media.Media
	createFail error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{assets: map[string]*media.Media{}}
}

func (repo *fakeRepository) Create(_ context.Context, asset *media.Media) error {
	if repo.createFail != nil {
		return repo.createFail
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.assets[asset.ID] = asset
	return nil
}

func (repo *fakeRepository) FindByID(_ context.Context, id string) (*media.Media, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if asset, ok := repo.assets[id]; ok {
		return asset, nil
	}
	return nil, apperr.NotFound("Media")
}

func (repo *fakeRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]*media.Media, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	owned := []*media.Media{}
	for _, asset := range repo.assets {
		if asset.UserID == userID {
			owned = append(owned, asset)
		}
	}
	total := len(owned)
	if offset > len(owned) {
		offset = len(owned)
	}
	owned = owned[offset:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, total, nil
}

func (repo *fakeRepository) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.assets, id)
	return nil
}

// fakeBlobStore is an in-memory BlobStore with injectable failures.
type fakeBlobStore struct {
	mu          sync.Mutex
	blobs       map[string][]byte
	saveFail    error
	deleteFail  map[string]error
	deleteCalls []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		blobs:      map[string][]byte{},
		deleteFail: map[string]error{},
	}
}

func (store *fakeBlobStore) Save(_ context.Context, id string, reader io.Reader) (int64, error) {
	if store.saveFail != nil {
		return 0, store.saveFail
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return 0, err
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.blobs[id] = payload
	return int64(len(payload)), nil
}

func (store *fakeBlobStore) Delete(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.deleteCalls = append(store.deleteCalls, id)
	if err, ok := store.deleteFail[id]; ok {
		return err
	}
	delete(store.blobs, id)
	return nil
}

func newTestService() (*media.Service, *fakeRepository, *fakeBlobStore) {
	repo := newFakeRepository()
	blobs := newFakeBlobStore()
	return media.NewService(repo, blobs), repo, blobs
}

// # Upload

/*
TestService_Upload verifies the blob-then-row ordering and the recorded
metadata.
*/
func TestService_Upload(t *testing.T) {
	service, repo, blobs := newTestService()

	asset, err := service.Upload(context.Background(), media.UploadInput{
		UserID:       "u1",
		OriginalName: "selfie.png",
		MimeType:     "image/png",
		Reader:       strings.NewReader("png bytes"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, asset.ID)
	assert.Equal(t, "u1", asset.UserID)
	assert.Equal(t, "selfie.png", asset.OriginalName)
	assert.Equal(t, int64(len("png bytes")), asset.SizeBytes)
	assert.Equal(t, "/api/media/"+asset.ID, asset.URL)

	assert.Contains(t, blobs.blobs, asset.ID)
	assert.Contains(t, repo.assets, asset.ID)
}

/*
TestService_Upload_RollsBackBlobOnRecordFailure verifies a failed metadata
insert removes the already-written blob.
*/
func TestService_Upload_RollsBackBlobOnRecordFailure(t *testing.T) {
	service, repo, blobs := newTestService()
	repo.createFail = errors.New("database is down")

	_, err := service.Upload(context.Background(), media.UploadInput{
		UserID: "u1",
		Reader: strings.NewReader("orphan bytes"),
	})
	require.Error(t, err)

	assert.Empty(t, blobs.blobs)
	assert.Len(t, blobs.deleteCalls, 1)
}

/*
TestService_Upload_BlobFailure verifies nothing is recorded when the bytes
never land.
*/
func TestService_Upload_BlobFailure(t *testing.T) {
	service, repo, blobs := newTestService()
	blobs.saveFail = errors.New("disk full")

	_, err := service.Upload(context.Background(), media.UploadInput{
		UserID: "u1",
		Reader: strings.NewReader("bytes"),
	})
	require.Error(t, err)
	assert.Empty(t, repo.assets)
}

// # Listing

/*
TestService_ListByUser verifies pages carry the owner's full count.
*/
func TestService_ListByUser(t *testing.T) {
	service, repo, _ := newTestService()
	for _, id := range []string{"m1", "m2", "m3"} {
		repo.assets[id] = &media.Media{ID: id, UserID: "u1"}
	}
	repo.assets["other"] = &media.Media{ID: "other", UserID: "u2"}

	assets, meta, err := service.ListByUser(context.Background(), "u1", pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, assets, 2)
	assert.Equal(t, 3, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}

// # Cleanup

/*
TestService_CleanupAssets verifies the fan-out removes bytes and metadata
for every asset and tolerates replays.
*/
func TestService_CleanupAssets(t *testing.T) {
	service, repo, blobs := newTestService()
	for _, id := range []string{"m1", "m2", "m3"} {
		repo.assets[id] = &media.Media{ID: id, UserID: "u1"}
		blobs.blobs[id] = []byte("bytes")
	}

	require.NoError(t, service.CleanupAssets(context.Background(), []string{"m1", "m2", "m3"}))
	assert.Empty(t, repo.assets)
	assert.Empty(t, blobs.blobs)

	// Replay: everything is already gone, and that is still success.
	require.NoError(t, service.CleanupAssets(context.Background(), []string{"m1", "m2", "m3"}))
}

/*
TestService_CleanupAssets_ReportsFailure verifies a failing deletion
surfaces after the whole fan-out has been awaited.
*/
func TestService_CleanupAssets_ReportsFailure(t *testing.T) {
	service, repo, blobs := newTestService()
	repo.assets["m1"] = &media.Media{ID: "m1", UserID: "u1"}
	repo.assets["m2"] = &media.Media{ID: "m2", UserID: "u1"}
	blobs.deleteFail["m2"] = errors.New("volume detached")

	err := service.CleanupAssets(context.Background(), []string{"m1", "m2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume detached")

	// The healthy asset was still cleaned.
	assert.NotContains(t, repo.assets, "m1")
}

// # Event Handler

/*
TestPostDeletedHandler exercises the bridge from a post.deleted payload to
the cleanup fan-out.
*/
func TestPostDeletedHandler(t *testing.T) {
	t.Run("cleans_listed_assets", func(t *testing.T) {
		service, repo, blobs := newTestService()
		repo.assets["m1"] = &media.Media{ID: "m1", UserID: "u1"}
		blobs.blobs["m1"] = []byte("bytes")

		handler := media.PostDeletedHandler(service)
		payload := []byte(`{"postId":"p1","userId":"u1","mediaIds":["m1"]}`)
		require.NoError(t, handler(context.Background(), payload))

		assert.Empty(t, repo.assets)
		assert.Empty(t, blobs.blobs)
	})

	t.Run("rejects_malformed_payload", func(t *testing.T) {
		service, _, _ := newTestService()

		handler := media.PostDeletedHandler(service)
		err := handler(context.Background(), []byte(`{not json`))
		require.Error(t, err)
	})

	t.Run("ignores_empty_media_list", func(t *testing.T) {
		service, _, blobs := newTestService()

		handler := media.PostDeletedHandler(service)
		payload := []byte(`{"postId":"p1","userId":"u1","mediaIds":[]}`)
		require.NoError(t, handler(context.Background(), payload))
		assert.Empty(t, blobs.deleteCalls)
	})
}
