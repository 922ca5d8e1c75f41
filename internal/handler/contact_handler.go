package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sharewall/backend/internal/model"
	"github.com/sharewall/backend/internal/service"
)

// ContactHandler handles inquiry submission and the admin inquiry queue.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// submitRequest is the expected JSON body for POST /contacts.
type submitRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Region  string `json:"region"`
	Message string `json:"message"`
}

type submitContactResponse struct {
	Success bool           `json:"success"`
	Contact *model.Contact `json:"contact"`
}

// Submit handles POST /contacts.
// name, phone, region and message are required; message max 5000 chars.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	contact, err := h.contactService.Submit(r.Context(), service.ContactInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Region:  req.Region,
		Message: req.Message,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitContactResponse{Success: true, Contact: contact})
}

// AdminList handles GET /admin/contacts.
func (h *ContactHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contactService.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Return [] not null for empty lists
	if contacts == nil {
		contacts = []*model.Contact{}
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, contacts)
}

// Delete handles DELETE /admin/contacts/{id} (mark handled).
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	if err := h.contactService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
