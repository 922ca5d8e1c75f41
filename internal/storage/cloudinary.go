package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/sharewall/backend/pkg/cloudinary"
)

// CloudinaryClient is the subset of the Cloudinary API the storage adapter uses.
type CloudinaryClient interface {
	Upload(ctx context.Context, params cloudinary.UploadParams, data io.Reader) (*cloudinary.UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// CloudinaryStorage stores images in Cloudinary. The handle is the asset public_id.
type CloudinaryStorage struct {
	client CloudinaryClient
	folder string
}

// NewCloudinaryStorage creates a CloudinaryStorage uploading into folder.
func NewCloudinaryStorage(client CloudinaryClient, folder string) *CloudinaryStorage {
	return &CloudinaryStorage{client: client, folder: strings.Trim(folder, "/")}
}

var _ Storage = (*CloudinaryStorage)(nil)

// Save uploads data. The key's base name without extension becomes the public
// id inside the configured folder.
func (s *CloudinaryStorage) Save(ctx context.Context, key string, data io.Reader, _ string) (Object, error) {
	base := path.Base(key)
	publicID := strings.TrimSuffix(base, path.Ext(base))
	if publicID == "" || publicID == "." || publicID == "/" {
		return Object{}, ErrInvalidKey
	}

	res, err := s.client.Upload(ctx, cloudinary.UploadParams{
		Folder:   s.folder,
		PublicID: publicID,
		Filename: base,
	}, data)
	if err != nil {
		return Object{}, fmt.Errorf("storage: cloudinary upload: %w", err)
	}
	return Object{URL: res.SecureURL, Handle: res.PublicID}, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, handle string) error {
	if handle == "" {
		return ErrInvalidKey
	}
	if err := s.client.Destroy(ctx, handle); err != nil {
		return fmt.Errorf("storage: cloudinary destroy: %w", err)
	}
	return nil
}
