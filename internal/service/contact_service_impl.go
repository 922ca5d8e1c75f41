package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sharewall/backend/internal/metrics"
	"github.com/sharewall/backend/internal/model"
	"github.com/sharewall/backend/internal/repository"
)

// regionPlaceholder is the unselected value of the region dropdown.
const regionPlaceholder = "choose"

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo    repository.ContactRepository
	metrics *metrics.Metrics
}

// NewContactService creates a ContactService backed by the given repository.
func NewContactService(repo repository.ContactRepository, m *metrics.Metrics) ContactService {
	return &contactServiceImpl{repo: repo, metrics: m}
}

// Submit trims every field, rejects missing ones, and persists the inquiry.
func (s *contactServiceImpl) Submit(ctx context.Context, in ContactInput) (*model.Contact, error) {
	c := &model.Contact{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Region:  strings.TrimSpace(in.Region),
		Message: strings.TrimSpace(in.Message),
	}
	if c.Region == regionPlaceholder {
		c.Region = ""
	}

	switch {
	case c.Name == "":
		return nil, &ValidationError{Field: "name", Reason: "required"}
	case c.Phone == "":
		return nil, &ValidationError{Field: "phone", Reason: "required"}
	case c.Region == "":
		return nil, &ValidationError{Field: "region", Reason: "required"}
	case c.Message == "":
		return nil, &ValidationError{Field: "message", Reason: "required"}
	case utf8.RuneCountInString(c.Message) > maxMessageLength:
		return nil, &ValidationError{Field: "message", Reason: "too_long"}
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		slog.Error("contact insert failed", "error", err)
		return nil, &PersistenceError{Op: "insert contact", Err: err}
	}
	s.metrics.ContactSubmitted()
	return c, nil
}

// List returns all inquiries, newest first.
func (s *contactServiceImpl) List(ctx context.Context) ([]*model.Contact, error) {
	contacts, err := s.repo.List(ctx)
	if err != nil {
		slog.Error("contact list failed", "error", err)
		return nil, &PersistenceError{Op: "list contacts", Err: err}
	}
	return contacts, nil
}

func (s *contactServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Kind: "contact", ID: id}
		}
		slog.Error("contact delete failed", "error", err, "contact_id", id)
		return &PersistenceError{Op: "delete contact", Err: err}
	}
	slog.Info("contact handled", "contact_id", id)
	return nil
}
