package handler

import (
	"net/http"
	"strconv"

	"github.com/Rrens/opsflow/internal/api/response"
	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/export"
	"github.com/Rrens/opsflow/internal/service"
)

// SubmissionHandler handles public submission and the responses read side
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// Submit records a public response
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	formID, ok := uuidParam(w, r, "formID")
	if !ok {
		return
	}

	var input domain.SubmissionCreate
	if !decode(w, r, &input) {
		return
	}

	sub, err := h.submissionService.Submit(r.Context(), formID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, map[string]any{
		"id":           sub.ID,
		"submitted_at": sub.SubmittedAt,
	})
}

// List handles ?page=&limit=&search= listing of a form's responses
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	formID, ok := uuidParam(w, r, "formID")
	if !ok {
		return
	}

	q := r.URL.Query()
	// malformed numbers fall back to the defaults
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.submissionService.List(r.Context(), userID, formID, domain.SubmissionFilter{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, result)
}

// Export streams the responses as a CSV attachment
func (h *SubmissionHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	formID, ok := uuidParam(w, r, "formID")
	if !ok {
		return
	}

	data, err := h.submissionService.Export(r.Context(), userID, formID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(formID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Analytics returns the daily counts and answer distributions of a form
func (h *SubmissionHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	formID, ok := uuidParam(w, r, "formID")
	if !ok {
		return
	}

	result, err := h.submissionService.Analytics(r.Context(), userID, formID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, result)
}
