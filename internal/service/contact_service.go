package service

import (
	"context"

	"github.com/sharewall/backend/internal/model"
)

// ContactInput is a contact form submission before validation.
type ContactInput struct {
	Name    string
	Phone   string
	Region  string
	Message string
}

// ContactService defines the business logic for contact inquiries.
type ContactService interface {
	// Submit validates and stores a new inquiry, returning it with ID and CreatedAt set.
	Submit(ctx context.Context, in ContactInput) (*model.Contact, error)

	// List returns all inquiries, newest first.
	List(ctx context.Context) ([]*model.Contact, error)

	// Delete marks an inquiry handled by removing it.
	Delete(ctx context.Context, id int64) error
}
