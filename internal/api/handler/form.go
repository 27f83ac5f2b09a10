package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Rrens/opsflow/internal/api/response"
	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/service"
)

// FormHandler handles form definition endpoints, including the public view
type FormHandler struct {
	formService *service.FormService
}

// NewFormHandler creates a new form handler
func NewFormHandler(formService *service.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// Create handles form creation
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}

	var input domain.FormCreate
	if !decode(w, r, &input) {
		return
	}

	form, err := h.formService.Create(r.Context(), userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, form)
}

// List handles listing the forms of ?workspace_id=
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}

	workspaceID, err := uuid.Parse(r.URL.Query().Get("workspace_id"))
	if err != nil {
		response.BadRequest(w, map[string]string{"workspace_id": "must be a valid UUID"})
		return
	}

	forms, err := h.formService.List(r.Context(), userID, workspaceID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, forms)
}

// Get handles getting a form by ID
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	formID, ok := uuidParam(w, r, "formID")
	if !ok {
		return
	}

	form, err := h.formService.Get(r.Context(), userID, formID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, form)
}

// UpdateDetails handles partial updates of name, description and the published flag
func (h *FormHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	formID, ok := uuidParam(w, r, "formID")
	if !ok {
		return
	}

	var input domain.FormDetailsUpdate
	if !decode(w, r, &input) {
		return
	}

	form, err := h.formService.UpdateDetails(r.Context(), userID, formID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, form)
}

// UpdateContent replaces fields, theme and settings
func (h *FormHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	formID, ok := uuidParam(w, r, "formID")
	if !ok {
		return
	}

	var input domain.FormContentUpdate
	if !decode(w, r, &input) {
		return
	}

	form, err := h.formService.UpdateContent(r.Context(), userID, formID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, form)
}

// Delete removes a form created by the requester
func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	formID, ok := uuidParam(w, r, "formID")
	if !ok {
		return
	}

	if err := h.formService.Delete(r.Context(), userID, formID); err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, map[string]string{"message": "form deleted"})
}

// GetPublic serves the respondent view without authentication
func (h *FormHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	formID, ok := uuidParam(w, r, "formID")
	if !ok {
		return
	}

	form, err := h.formService.GetPublic(r.Context(), formID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, form)
}
