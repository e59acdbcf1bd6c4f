// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/ctxutil"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/events"
)

// PostDeletedHandler returns the event handler that releases every asset
// attached to a deleted post.
//
// The handler is safe against replays: cleanup is idempotent end to end.
func PostDeletedHandler(service *Service) events.Handler {
	return func(context context.Context, payload []byte) error {
		var event events.PostDeleted
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("media_consumer_bad_payload: %w", err)
		}

		if len(event.MediaIDs) == 0 {
			return nil
		}

		logger := ctxutil.GetLogger(context)
		logger.Info("media_cleanup_started",
			slog.String("post_id", event.PostID),
			slog.Int("assets", len(event.MediaIDs)),
		)

		return service.CleanupAssets(context, event.MediaIDs)
	}
}
