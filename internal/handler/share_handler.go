package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sharewall/backend/internal/model"
	"github.com/sharewall/backend/internal/service"
)

// multipart のテキスト部分に許容する余白
const formOverhead = 1 << 20

// ShareHandler はシェア投稿・公開フィード・管理者のモデレーションを処理する
type ShareHandler struct {
	moderation     service.ModerationService
	maxUploadBytes int64
}

// NewShareHandler は ShareHandler を生成する
func NewShareHandler(moderation service.ModerationService, maxUploadBytes int64) *ShareHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = service.DefaultMaxImageBytes
	}
	return &ShareHandler{moderation: moderation, maxUploadBytes: maxUploadBytes}
}

type submitShareResponse struct {
	Success bool         `json:"success"`
	Share   *model.Share `json:"share"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Warning string `json:"warning,omitempty"`
}

// Submit は POST /shares を処理する (multipart: name, message, file?)
func (h *ShareHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+formOverhead)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file_too_large", "field": "file"})
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	in := service.SubmitShareInput{
		Name:    r.FormValue("name"),
		Message: r.FormValue("message"),
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// 画像なしの投稿
	case err != nil:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file_invalid", "field": "file"})
		return
	default:
		defer file.Close()
		in.Image = &service.ImageUpload{
			Data:        file,
			Filename:    header.Filename,
			ContentType: uploadContentType(header.Header.Get("Content-Type"), header.Filename),
			Size:        header.Size,
		}
	}

	share, err := h.moderation.Submit(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitShareResponse{Success: true, Share: share})
}

// uploadContentType prefers the part's declared type and falls back to the
// file extension.
func uploadContentType(declared, filename string) string {
	if declared != "" && declared != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return mt
		}
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		mt, _, _ := mime.ParseMediaType(byExt)
		return mt
	}
	return declared
}

// PublishedFeed は GET /shares/published を処理する
func (h *ShareHandler) PublishedFeed(w http.ResponseWriter, r *http.Request) {
	shares, err := h.moderation.PublishedFeed(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if shares == nil {
		shares = []*model.Share{}
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, shares)
}

// AdminList は GET /admin/shares を処理する（未公開を含む全件）
func (h *ShareHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	shares, err := h.moderation.List(r.Context(), model.FilterAll)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if shares == nil {
		shares = []*model.Share{}
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, shares)
}

// Publish は POST /admin/shares/publish/{id} を処理する
func (h *ShareHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	if err := h.moderation.Publish(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Unpublish は POST /admin/shares/unpublish/{id} を処理する
func (h *ShareHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	if err := h.moderation.Unpublish(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Delete は DELETE /admin/shares/{id} を処理する。
// 画像の削除に失敗しても投稿の削除は成功として warning を付けて返す。
func (h *ShareHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	res, err := h.moderation.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if res.Warning != "" {
		slog.Warn("share deleted with warning", "share_id", id, "warning", res.Warning)
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Warning: res.Warning})
}
