package service

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sharewall/backend/internal/metrics"
	"github.com/sharewall/backend/internal/model"
	"github.com/sharewall/backend/internal/repository"
	"github.com/sharewall/backend/internal/storage"
)

const (
	maxNameLength    = 100
	maxMessageLength = 5000

	// DefaultFeedLimit caps the public feed to the most recent shares.
	DefaultFeedLimit = 200
	// DefaultMaxImageBytes is the largest accepted image.
	DefaultMaxImageBytes int64 = 5 << 20

	imageKeyPrefix = "shares"
	cleanupTimeout = 10 * time.Second
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ModerationConfig tunes the moderation service.
type ModerationConfig struct {
	FeedLimit     int
	MaxImageBytes int64
}

type moderationServiceImpl struct {
	repo     repository.ShareRepository
	storage  storage.Storage
	notifier FeedNotifier
	metrics  *metrics.Metrics
	cfg      ModerationConfig

	// feedMu orders moderation writes with their feed events.
	feedMu sync.Mutex
}

// NewModerationService creates the ModerationService.
// notifier and m may be nil.
func NewModerationService(repo repository.ShareRepository, store storage.Storage, notifier FeedNotifier, m *metrics.Metrics, cfg ModerationConfig) ModerationService {
	if cfg.FeedLimit <= 0 {
		cfg.FeedLimit = DefaultFeedLimit
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	return &moderationServiceImpl{repo: repo, storage: store, notifier: notifier, metrics: m, cfg: cfg}
}

func (s *moderationServiceImpl) Submit(ctx context.Context, in SubmitShareInput) (*model.Share, error) {
	share := &model.Share{
		Name:    strings.TrimSpace(in.Name),
		Message: strings.TrimSpace(in.Message),
	}
	if err := validateShare(share); err != nil {
		return nil, err
	}

	var ext string
	if in.Image != nil {
		var err error
		if ext, err = s.validateImage(in.Image); err != nil {
			return nil, err
		}
	}

	if in.Image != nil {
		key := path.Join(imageKeyPrefix, uuid.NewString()+ext)
		obj, err := s.storage.Save(ctx, key, in.Image.Data, in.Image.ContentType)
		if err != nil {
			slog.Error("share image upload failed", "error", err, "key", key)
			return nil, &StorageError{Op: "upload", Err: err}
		}
		share.ImageURL = obj.URL
		share.ImageHandle = obj.Handle
	}

	if err := s.repo.Insert(ctx, share); err != nil {
		slog.Error("share insert failed", "error", err)
		if share.ImageHandle != "" {
			// No row references the upload.
			s.cleanupImage(share.ImageHandle, 0)
		}
		return nil, &PersistenceError{Op: "insert share", Err: err}
	}

	s.metrics.ShareSubmitted()
	slog.Info("share submitted", "share_id", share.ID, "has_image", share.HasImage())
	return share, nil
}

func validateShare(share *model.Share) error {
	switch {
	case share.Name == "":
		return &ValidationError{Field: "name", Reason: "required"}
	case share.Message == "":
		return &ValidationError{Field: "message", Reason: "required"}
	case utf8.RuneCountInString(share.Name) > maxNameLength:
		return &ValidationError{Field: "name", Reason: "too_long"}
	case utf8.RuneCountInString(share.Message) > maxMessageLength:
		return &ValidationError{Field: "message", Reason: "too_long"}
	}
	return nil
}

func (s *moderationServiceImpl) validateImage(img *ImageUpload) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(img.ContentType)]
	if !ok {
		return "", &ValidationError{Field: "file", Reason: "unsupported_type"}
	}
	if img.Size > s.cfg.MaxImageBytes {
		return "", &ValidationError{Field: "file", Reason: "too_large"}
	}
	return ext, nil
}

func (s *moderationServiceImpl) Publish(ctx context.Context, id int64) error {
	err := s.setPublished(ctx, id, true)
	s.metrics.Moderation("publish", err)
	return err
}

func (s *moderationServiceImpl) Unpublish(ctx context.Context, id int64) error {
	err := s.setPublished(ctx, id, false)
	s.metrics.Moderation("unpublish", err)
	return err
}

// setPublished writes the flag and announces the row the update returned.
// feedMu keeps the event order equal to the write order, so the last event a
// subscriber sees always matches the stored flag.
func (s *moderationServiceImpl) setPublished(ctx context.Context, id int64, published bool) error {
	s.feedMu.Lock()
	defer s.feedMu.Unlock()

	share, err := s.repo.SetPublished(ctx, id, published)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Kind: "share", ID: id}
		}
		slog.Error("share publish update failed", "error", err, "share_id", id, "published", published)
		return &PersistenceError{Op: "set published", Err: err}
	}
	slog.Info("share moderated", "share_id", id, "published", share.Published)

	if share.Published {
		s.notify(model.FeedEvent{Type: model.FeedEventPublished, ShareID: id, Share: share})
	} else {
		s.notify(model.FeedEvent{Type: model.FeedEventUnpublished, ShareID: id})
	}
	return nil
}

// Delete removes the row, then the image. A failed image cleanup is reported
// through DeleteResult.Warning; the delete itself still succeeds.
func (s *moderationServiceImpl) Delete(ctx context.Context, id int64) (DeleteResult, error) {
	share, err := s.deleteRow(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = &NotFoundError{Kind: "share", ID: id}
		} else {
			slog.Error("share delete failed", "error", err, "share_id", id)
			err = &PersistenceError{Op: "delete share", Err: err}
		}
		s.metrics.Moderation("delete", err)
		return DeleteResult{}, err
	}
	s.metrics.Moderation("delete", nil)
	slog.Info("share deleted", "share_id", id)

	var res DeleteResult
	if share.ImageHandle != "" {
		if err := s.cleanupImage(share.ImageHandle, id); err != nil {
			res.Warning = WarningImageCleanupFailed
		}
	}
	return res, nil
}

// deleteRow removes the row and announces it under feedMu, so a concurrent
// publish cannot announce the share after its deletion.
func (s *moderationServiceImpl) deleteRow(ctx context.Context, id int64) (*model.Share, error) {
	s.feedMu.Lock()
	defer s.feedMu.Unlock()

	share, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(model.FeedEvent{Type: model.FeedEventDeleted, ShareID: id})
	return share, nil
}

// cleanupImage deletes a stored image by handle. It runs on its own context so
// a client disconnect after the row is gone does not abort the cleanup.
func (s *moderationServiceImpl) cleanupImage(handle string, shareID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if err := s.storage.Delete(ctx, handle); err != nil {
		s.metrics.ImageCleanupFailed()
		slog.Error("share image cleanup failed", "error", err, "share_id", shareID, "handle", handle)
		return &StorageError{Op: "delete", Err: err}
	}
	return nil
}

func (s *moderationServiceImpl) List(ctx context.Context, filter model.ShareFilter) ([]*model.Share, error) {
	return s.list(ctx, model.ShareListOptions{Filter: filter})
}

func (s *moderationServiceImpl) PublishedFeed(ctx context.Context) ([]*model.Share, error) {
	shares, err := s.list(ctx, model.ShareListOptions{Filter: model.FilterPublishedOnly, Limit: s.cfg.FeedLimit})
	if err != nil {
		return nil, err
	}
	// Published rows only, whatever the store hands back.
	visible := shares[:0]
	for _, sh := range shares {
		if sh.Published {
			visible = append(visible, sh)
		}
	}
	return visible, nil
}

func (s *moderationServiceImpl) list(ctx context.Context, opts model.ShareListOptions) ([]*model.Share, error) {
	shares, err := s.repo.List(ctx, opts)
	if err != nil {
		slog.Error("share list failed", "error", err, "filter", opts.Filter.String())
		return nil, &PersistenceError{Op: "list shares", Err: err}
	}
	return shares, nil
}

func (s *moderationServiceImpl) notify(ev model.FeedEvent) {
	if s.notifier != nil {
		s.notifier.Notify(ev)
	}
}
