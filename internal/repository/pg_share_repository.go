package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sharewall/backend/internal/model"
)

const shareColumns = `id, name, message, COALESCE(image_url, ''), COALESCE(image_handle, ''), published, created_at`

// PgShareRepository is the PostgreSQL implementation of ShareRepository.
type PgShareRepository struct {
	pool *pgxpool.Pool
}

// NewPgShareRepository creates a PgShareRepository backed by the given pool.
func NewPgShareRepository(pool *pgxpool.Pool) *PgShareRepository {
	return &PgShareRepository{pool: pool}
}

var _ ShareRepository = (*PgShareRepository)(nil)

// Insert adds a new share and populates ID, Published and CreatedAt from the
// RETURNING clause. New rows are always unpublished.
func (r *PgShareRepository) Insert(ctx context.Context, share *model.Share) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO shares (name, message, image_url, image_handle, published)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), false)
		 RETURNING id, published, created_at`,
		share.Name, share.Message, share.ImageURL, share.ImageHandle,
	).Scan(&share.ID, &share.Published, &share.CreatedAt)
}

// GetByID returns ErrNotFound when no share has the given id.
func (r *PgShareRepository) GetByID(ctx context.Context, id int64) (*model.Share, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+shareColumns+` FROM shares WHERE id = $1`, id)
	s, err := scanShare(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns shares newest first.
func (r *PgShareRepository) List(ctx context.Context, opts model.ShareListOptions) ([]*model.Share, error) {
	query, args := buildShareListQuery(opts)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []*model.Share
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

// SetPublished updates the published flag and returns the row as written.
// Setting the current value again still matches the row.
func (r *PgShareRepository) SetPublished(ctx context.Context, id int64, published bool) (*model.Share, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE shares SET published = $2 WHERE id = $1 RETURNING `+shareColumns, id, published)
	s, err := scanShare(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes the share and returns the deleted row.
func (r *PgShareRepository) Delete(ctx context.Context, id int64) (*model.Share, error) {
	row := r.pool.QueryRow(ctx, `DELETE FROM shares WHERE id = $1 RETURNING `+shareColumns, id)
	s, err := scanShare(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// buildShareListQuery renders the listing statement. The published filter is a
// literal predicate so the public query can never lose it to a bad argument.
func buildShareListQuery(opts model.ShareListOptions) (string, []any) {
	query := `SELECT ` + shareColumns + ` FROM shares`
	if opts.Filter == model.FilterPublishedOnly {
		query += ` WHERE published = true`
	}
	query += ` ORDER BY id DESC`

	var args []any
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	return query, args
}

func scanShare(row pgx.Row) (*model.Share, error) {
	var s model.Share
	if err := row.Scan(&s.ID, &s.Name, &s.Message, &s.ImageURL, &s.ImageHandle, &s.Published, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
