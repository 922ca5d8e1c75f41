package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sharewall/backend/internal/metrics"
	"github.com/sharewall/backend/internal/repository"
	"github.com/sharewall/backend/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

// AdminToken is an issued admin bearer token.
type AdminToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminAuthService checks admin credentials and issues bearer tokens.
type AdminAuthService struct {
	repo       repository.AdminRepository
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewAdminAuthService creates an AdminAuthService. ttl <= 0 uses auth.DefaultTokenTTL.
func NewAdminAuthService(repo repository.AdminRepository, secret []byte, ttl time.Duration, m *metrics.Metrics) *AdminAuthService {
	if ttl <= 0 {
		ttl = auth.DefaultTokenTTL
	}
	return &AdminAuthService{
		repo:       repo,
		secret:     secret,
		ttl:        ttl,
		bcryptCost: bcrypt.DefaultCost,
		metrics:    m,
		now:        time.Now,
	}
}

// Login verifies username/password and returns a signed, time-limited token.
// Unknown user and wrong password both yield *AuthError.
func (s *AdminAuthService) Login(ctx context.Context, username, password string) (*AdminToken, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &ValidationError{Field: "username", Reason: "required"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Reason: "required"}
	}

	admin, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.Login(false)
			slog.Warn("admin login rejected", "username", username, "reason", "unknown_user")
			return nil, &AuthError{Reason: "invalid_credentials"}
		}
		return nil, &PersistenceError{Op: "find admin", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.metrics.Login(false)
		slog.Warn("admin login rejected", "username", username, "reason", "wrong_password")
		return nil, &AuthError{Reason: "invalid_credentials"}
	}

	expiresAt := s.now().Add(s.ttl)
	s.metrics.Login(true)
	slog.Info("admin logged in", "username", admin.Username)
	return &AdminToken{
		Token:     auth.CreateToken(admin.Username, expiresAt, s.secret),
		ExpiresAt: expiresAt,
	}, nil
}

// Verify validates a bearer token and returns the admin username.
func (s *AdminAuthService) Verify(token string) (string, error) {
	username, err := auth.VerifyToken(token, s.secret, s.now())
	if errors.Is(err, auth.ErrTokenExpired) {
		return "", &AuthError{Reason: "token_expired"}
	}
	if err != nil {
		return "", &AuthError{Reason: "invalid_token"}
	}
	return username, nil
}

// EnsureAdmin creates the admin or resets its password.
func (s *AdminAuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return &ValidationError{Field: "username", Reason: "required"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Reason: "required"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, username, string(hash)); err != nil {
		return &PersistenceError{Op: "upsert admin", Err: err}
	}
	slog.Info("admin ensured", "username", username)
	return nil
}
