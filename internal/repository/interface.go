package repository

import (
	"context"

	"github.com/sharewall/backend/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// ShareRepository is the persistence interface for wall submissions.
// It is the only place the published flag is stored.
type ShareRepository interface {
	Insert(ctx context.Context, share *model.Share) error
	GetByID(ctx context.Context, id int64) (*model.Share, error)
	List(ctx context.Context, opts model.ShareListOptions) ([]*model.Share, error)
	// SetPublished returns the updated row.
	SetPublished(ctx context.Context, id int64, published bool) (*model.Share, error)
	// Delete removes the row and returns it as it was, so the caller can clean
	// up the referenced image.
	Delete(ctx context.Context, id int64) (*model.Share, error)
}

// ContactRepository is the persistence interface for contact inquiries.
type ContactRepository interface {
	Insert(ctx context.Context, contact *model.Contact) error
	List(ctx context.Context) ([]*model.Contact, error)
	Delete(ctx context.Context, id int64) error
}

// AdminRepository stores admin credentials.
type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.Admin, error)
	Upsert(ctx context.Context, username, passwordHash string) error
}
