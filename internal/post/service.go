// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/cache"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/constants"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/ctxutil"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/events"
	"github.com/sajagsubedi/Social-Media-Microservice/pkg/pagination"
	"github.com/sajagsubedi/Social-Media-Microservice/pkg/uuid"
)

// Service implements the content use cases, orchestrating the repository,
// the shared response cache, and the event bridge.
//
// # Cache Protocol
//
// Reads go through the cache; writes invalidate it. The cache is strictly an
// optimization: every cache failure is logged and the request proceeds
// against PostgreSQL as if the cache did not exist.
type Service struct {
	repository Repository
	cacheStore cache.Store
	publisher  events.Publisher
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(repository Repository, cacheStore cache.Store, publisher events.Publisher) *Service {
	return &Service{
		repository: repository,
		cacheStore: cacheStore,
		publisher:  publisher,
	}
}

// CreateInput holds the data required to publish a new post.
type CreateInput struct {
	UserID   string
	Content  string
	MediaIDs []string
}

// Create persists a new post and invalidates every cached list page, since
// any of them could now be stale.
func (service *Service) Create(context context.Context, input CreateInput) (*Post, error) {
	post := &Post{
		ID:       uuid.New(),
		UserID:   input.UserID,
		Content:  input.Content,
		MediaIDs: input.MediaIDs,
	}

	if post.MediaIDs == nil {
		post.MediaIDs = []string{}
	}

	if err := service.repository.Create(context, post); err != nil {
		return nil, fmt.Errorf("post_service_create_failed: %w", err)
	}

	service.invalidateListPages(context)

	return post, nil
}

// Get returns a single post, serving from the cache when possible.
func (service *Service) Get(context context.Context, id string) (*Post, error) {
	key := constants.RedisPrefixPost + id

	// Cache hit: decode and return without touching PostgreSQL.
	if payload, err := service.cacheStore.Get(context, key); err == nil {
		post := &Post{}
		if err := json.Unmarshal(payload, post); err == nil {
			return post, nil
		}
		// Corrupt entry: fall through to the repository.
	} else if !errors.Is(err, cache.ErrMiss) {
		service.logCacheFailure(context, "get", key, err)
	}

	post, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	service.populate(context, key, post)

	return post, nil
}

// listPage is the cached representation of one list page.
type listPage struct {
	Posts []*Post         `json:"posts"`
	Meta  pagination.Meta `json:"meta"`
}

// List returns one page of posts newest first, serving from the cache when
// possible.
func (service *Service) List(context context.Context, params pagination.Params) ([]*Post, pagination.Meta, error) {
	key := listPageKey(params)

	if payload, err := service.cacheStore.Get(context, key); err == nil {
		page := &listPage{}
		if err := json.Unmarshal(payload, page); err == nil {
			return page.Posts, page.Meta, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		service.logCacheFailure(context, "get", key, err)
	}

	posts, total, err := service.repository.List(context, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	meta := pagination.NewMeta(params.Page, params.Limit, total)
	service.populate(context, key, &listPage{Posts: posts, Meta: meta})

	return posts, meta, nil
}

// Delete removes a post owned by userID, announces the deletion on the event
// bridge, and invalidates the affected cache entries.
//
// # Ordering
//
// The row is deleted first; the event and the invalidation follow. A publish
// failure is logged but does not undo the deletion, so the client still gets
// success and downstream cleanup relies on the broker coming back.
func (service *Service) Delete(context context.Context, id, userID string) error {
	mediaIDs, err := service.repository.DeleteOwned(context, id, userID)
	if err != nil {
		return err
	}

	event := events.PostDeleted{
		PostID:   id,
		UserID:   userID,
		MediaIDs: mediaIDs,
	}
	if err := service.publisher.Publish(context, constants.RoutingKeyPostDeleted, event); err != nil {
		logger := ctxutil.GetLogger(context)
		logger.Error("post_deleted_event_publish_failed",
			slog.String("post_id", id),
			slog.Any("error", err),
		)
	}

	if err := service.cacheStore.Delete(context, constants.RedisPrefixPost+id); err != nil {
		service.logCacheFailure(context, "delete", constants.RedisPrefixPost+id, err)
	}
	service.invalidateListPages(context)

	return nil
}

// invalidateListPages sweeps every cached list page. Best effort.
func (service *Service) invalidateListPages(context context.Context) {
	pattern := constants.RedisPrefixPostList + "*"
	if err := service.cacheStore.DeleteByPattern(context, pattern); err != nil {
		service.logCacheFailure(context, "invalidate", pattern, err)
	}
}

// populate writes a value into the cache. Best effort.
func (service *Service) populate(context context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := service.cacheStore.Set(context, key, payload, CacheTTL); err != nil {
		service.logCacheFailure(context, "set", key, err)
	}
}

// logCacheFailure records a degraded-cache event without failing the request.
func (service *Service) logCacheFailure(context context.Context, operation, key string, err error) {
	logger := ctxutil.GetLogger(context)
	logger.Warn("post_cache_degraded",
		slog.String("operation", operation),
		slog.String("key", key),
		slog.Any("error", err),
	)
}

// listPageKey derives the cache key for one list page.
func listPageKey(params pagination.Params) string {
	return constants.RedisPrefixPostList + strconv.Itoa(params.Page) + ":" + strconv.Itoa(params.Limit)
}
