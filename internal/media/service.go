// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/ctxutil"
	"github.com/sajagsubedi/Social-Media-Microservice/pkg/pagination"
	"github.com/sajagsubedi/Social-Media-Microservice/pkg/uuid"
)

// Service implements the media use cases: uploads, listings, and the
// event-driven cleanup fan-out.
type Service struct {
	repository Repository
	blobs      BlobStore
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(repository Repository, blobs BlobStore) *Service {
	return &Service{
		repository: repository,
		blobs:      blobs,
	}
}

// UploadInput holds the data required to store a new asset.
type UploadInput struct {
	UserID       string
	OriginalName string
	MimeType     string
	Reader       io.Reader
}

// Upload streams the asset to the blob store and records its metadata.
//
// # Ordering
//
// The blob lands first, the row second. A crash in between leaves an orphan
// blob but never a dangling record pointing at missing bytes.
func (service *Service) Upload(context context.Context, input UploadInput) (*Media, error) {
	id := uuid.New()

	size, err := service.blobs.Save(context, id, input.Reader)
	if err != nil {
		return nil, fmt.Errorf("media_service_upload_failed: %w", err)
	}

	media := &Media{
		ID:           id,
		UserID:       input.UserID,
		OriginalName: input.OriginalName,
		MimeType:     input.MimeType,
		SizeBytes:    size,
		URL:          "/api/media/" + id,
	}

	if err := service.repository.Create(context, media); err != nil {
		// Roll the blob back so storage does not leak.
		_ = service.blobs.Delete(context, id)
		return nil, fmt.Errorf("media_service_record_failed: %w", err)
	}

	return media, nil
}

// ListByUser returns one page of the caller's assets, newest first.
func (service *Service) ListByUser(context context.Context, userID string, params pagination.Params) ([]*Media, pagination.Meta, error) {
	assets, total, err := service.repository.ListByUser(context, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return assets, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// CleanupAssets removes the given assets, bytes and metadata both.
//
// # Semantics
//
// The fan-out is bounded and fully awaited: the call returns only after
// every deletion attempt has finished, and the first failure is reported.
// Absent assets are success, so a replayed event changes nothing.
func (service *Service) CleanupAssets(context context.Context, mediaIDs []string) error {
	logger := ctxutil.GetLogger(context)

	group, groupContext := errgroup.WithContext(context)
	group.SetLimit(CleanupConcurrency)

	for _, mediaID := range mediaIDs {
		group.Go(func() error {
			if err := service.blobs.Delete(groupContext, mediaID); err != nil {
				return err
			}
			if err := service.repository.Delete(groupContext, mediaID); err != nil {
				return err
			}
			logger.Info("media_asset_cleaned", slog.String("media_id", mediaID))
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("media_service_cleanup_failed: %w", err)
	}

	return nil
}
