package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sharewall/backend/internal/service"
	"github.com/sharewall/backend/pkg/auth"
)

// AdminAuthenticator issues and verifies admin tokens.
type AdminAuthenticator interface {
	Login(ctx context.Context, username, password string) (*service.AdminToken, error)
	Verify(token string) (string, error)
}

// AdminHandler は管理者ログインとトークン検証を処理する
type AdminHandler struct {
	authenticator AdminAuthenticator
}

// NewAdminHandler は AdminHandler を生成する
func NewAdminHandler(a AdminAuthenticator) *AdminHandler {
	return &AdminHandler{authenticator: a}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login は POST /admin/login を処理する
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	token, err := h.authenticator.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, token)
}

type verifyResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username"`
}

// VerifyToken は POST /admin/verify-token を処理する。
// トークン無しは 401、不正・期限切れは RequireAdmin と同じく 403 を返す。
func (h *AdminHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	username, err := h.authenticator.Verify(token)
	if err != nil {
		var ae *service.AuthError
		if errors.As(err, &ae) {
			writeError(w, http.StatusForbidden, ae.Reason)
			return
		}
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, verifyResponse{Valid: true, Username: username})
}
