package service

import (
	"context"
	"io"

	"github.com/sharewall/backend/internal/model"
)

// ImageUpload is an image attached to a share submission.
type ImageUpload struct {
	Data        io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// SubmitShareInput is a visitor submission before validation.
type SubmitShareInput struct {
	Name    string
	Message string
	Image   *ImageUpload // nil when no file was attached
}

// DeleteResult reports side effects of a successful delete.
// Warning is non-empty when the row is gone but its image could not be removed.
type DeleteResult struct {
	Warning string
}

// WarningImageCleanupFailed is set on DeleteResult when storage cleanup fails.
const WarningImageCleanupFailed = "image_cleanup_failed"

// ModerationService owns the share lifecycle: pending on submit, then
// published/unpublished by an admin, and finally deleted together with its image.
type ModerationService interface {
	// Submit validates and stores a new pending share, uploading the image first.
	Submit(ctx context.Context, in SubmitShareInput) (*model.Share, error)

	// Publish makes the share visible on the public feed. Idempotent.
	Publish(ctx context.Context, id int64) error

	// Unpublish hides the share from the public feed. Idempotent.
	Unpublish(ctx context.Context, id int64) error

	// Delete removes the share and then, best-effort, its stored image.
	Delete(ctx context.Context, id int64) (DeleteResult, error)

	// List returns shares newest first.
	List(ctx context.Context, filter model.ShareFilter) ([]*model.Share, error)

	// PublishedFeed returns the public feed: published shares only, newest first,
	// capped to the most recent rows.
	PublishedFeed(ctx context.Context) ([]*model.Share, error)
}

// FeedNotifier receives public feed changes. Implementations must not block.
type FeedNotifier interface {
	Notify(event model.FeedEvent)
}
