// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package post_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/apperr"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/cache"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/post"
	"github.com/sajagsubedi/Social-Media-Microservice/pkg/pagination"
)

// # Test Doubles

// fakeRepository is an in-memory post Repository.
type fakeRepository struct {
	posts     map[string]*post.Post
	findCalls int
	listCalls int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{posts: map[string]*post.Post{}}
}

func (repo *fakeRepository) Create(_ context.Context, p *post.Post) error {
	repo.posts[p.ID] = p
	return nil
}

func (repo *fakeRepository) FindByID(_ context.Context, id string) (*post.Post, error) {
	repo.findCalls++
	if p, ok := repo.posts[id]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("Post")
}

func (repo *fakeRepository) List(_ context.Context, limit, offset int) ([]*post.Post, int, error) {
	repo.listCalls++
	all := make([]*post.Post, 0, len(repo.posts))
	for _, p := range repo.posts {
		all = append(all, p)
	}
	return all, len(repo.posts), nil
}

func (repo *fakeRepository) DeleteOwned(_ context.Context, id, userID string) ([]string, error) {
	p, ok := repo.posts[id]
	if !ok || p.UserID != userID {
		return nil, apperr.NotFound("Post")
	}
	delete(repo.posts, id)
	return p.MediaIDs, nil
}

// fakeCacheStore is an in-memory cache.Store with an injectable failure.
type fakeCacheStore struct {
	entries  map[string][]byte
	failWith error
	patterns []string // DeleteByPattern calls observed
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{entries: map[string][]byte{}}
}

func (store *fakeCacheStore) Get(_ context.Context, key string) ([]byte, error) {
	if store.failWith != nil {
		return nil, store.failWith
	}
	if payload, ok := store.entries[key]; ok {
		return payload, nil
	}
	return nil, cache.ErrMiss
}

func (store *fakeCacheStore) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	if store.failWith != nil {
		return store.failWith
	}
	store.entries[key] = payload
	return nil
}

func (store *fakeCacheStore) Delete(_ context.Context, keys ...string) error {
	if store.failWith != nil {
		return store.failWith
	}
	for _, key := range keys {
		delete(store.entries, key)
	}
	return nil
}

func (store *fakeCacheStore) DeleteByPattern(_ context.Context, pattern string) error {
	store.patterns = append(store.patterns, pattern)
	if store.failWith != nil {
		return store.failWith
	}
	// Glob "posts:*" maps to the prefix before the asterisk.
	prefix := pattern[:len(pattern)-1]
	for key := range store.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(store.entries, key)
		}
	}
	return nil
}

// fakePublisher records emitted events.
type fakePublisher struct {
	routingKeys []string
	payloads    []any
	failWith    error
}

func (publisher *fakePublisher) Publish(_ context.Context, routingKey string, event any) error {
	if publisher.failWith != nil {
		return publisher.failWith
	}
	publisher.routingKeys = append(publisher.routingKeys, routingKey)
	publisher.payloads = append(publisher.payloads, event)
	return nil
}

func newTestService() (*post.Service, *fakeRepository, *fakeCacheStore, *fakePublisher) {
	repo := newFakeRepository()
	cacheStore := newFakeCacheStore()
	publisher := &fakePublisher{}
	return post.NewService(repo, cacheStore, publisher), repo, cacheStore, publisher
}

// # Read Path

/*
TestService_Get_CacheMissThenHit verifies the read-through protocol: a miss
populates the cache, a hit skips the repository entirely.
*/
func TestService_Get_CacheMissThenHit(t *testing.T) {
	service, repo, cacheStore, _ := newTestService()
	repo.posts["p1"] = &post.Post{ID: "p1", UserID: "u1", Content: "hello"}

	// Miss: repository answers, cache is populated.
	fetched, err := service.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "hello", fetched.Content)
	assert.Equal(t, 1, repo.findCalls)
	assert.Contains(t, cacheStore.entries, "post:p1")

	// Hit: repository untouched.
	fetched, err = service.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "hello", fetched.Content)
	assert.Equal(t, 1, repo.findCalls)
}

/*
TestService_Get_CacheFailOpen verifies a broken cache degrades to plain
repository reads instead of failing the request.
*/
func TestService_Get_CacheFailOpen(t *testing.T) {
	service, repo, cacheStore, _ := newTestService()
	repo.posts["p1"] = &post.Post{ID: "p1", UserID: "u1", Content: "hello"}
	cacheStore.failWith = errors.New("redis is down")

	fetched, err := service.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "hello", fetched.Content)
	assert.Equal(t, 1, repo.findCalls)
}

/*
TestService_Get_NotFound verifies a missing post surfaces NotFound.
*/
func TestService_Get_NotFound(t *testing.T) {
	service, _, _, _ := newTestService()

	_, err := service.Get(context.Background(), "nope")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestService_List_CachesPerPage verifies list pages are cached under
page-and-limit-specific keys with their metadata.
*/
func TestService_List_CachesPerPage(t *testing.T) {
	service, repo, cacheStore, _ := newTestService()
	repo.posts["p1"] = &post.Post{ID: "p1", UserID: "u1", Content: "hello"}

	posts, meta, err := service.List(context.Background(), pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 1, meta.Total)
	assert.Contains(t, cacheStore.entries, "posts:1:10")
	assert.Equal(t, 1, repo.listCalls)

	// Cached page serves the second read.
	_, _, err = service.List(context.Background(), pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
}

// # Write Path

/*
TestService_Create_InvalidatesListPages verifies a new post sweeps every
cached list page.
*/
func TestService_Create_InvalidatesListPages(t *testing.T) {
	service, repo, cacheStore, _ := newTestService()
	cacheStore.entries["posts:1:10"] = []byte(`{"posts":[],"meta":{}}`)

	created, err := service.Create(context.Background(), post.CreateInput{
		UserID:  "u1",
		Content: "fresh content",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Contains(t, repo.posts, created.ID)
	assert.NotContains(t, cacheStore.entries, "posts:1:10")
	assert.Equal(t, []string{"posts:*"}, cacheStore.patterns)
}

/*
TestService_Delete verifies ownership enforcement, event emission, and cache
invalidation on the deletion path.
*/
func TestService_Delete(t *testing.T) {
	t.Run("owner_deletes", func(t *testing.T) {
		service, repo, cacheStore, publisher := newTestService()
		repo.posts["p1"] = &post.Post{ID: "p1", UserID: "u1", MediaIDs: []string{"m1", "m2"}}
		cacheStore.entries["post:p1"] = []byte(`{}`)
		cacheStore.entries["posts:1:10"] = []byte(`{}`)

		require.NoError(t, service.Delete(context.Background(), "p1", "u1"))

		assert.NotContains(t, repo.posts, "p1")
		assert.NotContains(t, cacheStore.entries, "post:p1")
		assert.NotContains(t, cacheStore.entries, "posts:1:10")

		require.Len(t, publisher.routingKeys, 1)
		assert.Equal(t, "post.deleted", publisher.routingKeys[0])

		payload, err := json.Marshal(publisher.payloads[0])
		require.NoError(t, err)
		assert.JSONEq(t, `{"postId":"p1","userId":"u1","mediaIds":["m1","m2"]}`, string(payload))
	})

	t.Run("foreign_post_is_not_found", func(t *testing.T) {
		service, repo, _, publisher := newTestService()
		repo.posts["p1"] = &post.Post{ID: "p1", UserID: "u1"}

		err := service.Delete(context.Background(), "p1", "intruder")
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)

		// Nothing deleted, nothing announced.
		assert.Contains(t, repo.posts, "p1")
		assert.Empty(t, publisher.routingKeys)
	})

	t.Run("publish_failure_does_not_undo_delete", func(t *testing.T) {
		service, repo, _, publisher := newTestService()
		repo.posts["p1"] = &post.Post{ID: "p1", UserID: "u1"}
		publisher.failWith = errors.New("broker is down")

		require.NoError(t, service.Delete(context.Background(), "p1", "u1"))
		assert.NotContains(t, repo.posts, "p1")
	})
}
