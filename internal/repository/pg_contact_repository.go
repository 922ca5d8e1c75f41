package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sharewall/backend/internal/model"
)

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*PgContactRepository)(nil)

// Insert adds a contacts row and populates contact.ID and CreatedAt
// from the database RETURNING clause.
func (r *PgContactRepository) Insert(ctx context.Context, contact *model.Contact) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO contacts (name, phone, region, message)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		contact.Name, contact.Phone, contact.Region, contact.Message,
	).Scan(&contact.ID, &contact.CreatedAt)
}

// List returns all inquiries, newest first.
func (r *PgContactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, phone, region, message, created_at
		 FROM contacts
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Region, &c.Message, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}

// Delete removes a handled inquiry. Returns ErrNotFound if it does not exist.
func (r *PgContactRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
