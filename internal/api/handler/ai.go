package handler

import (
	"net/http"

	"github.com/Rrens/opsflow/internal/api/response"
	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/service"
)

// AIHandler handles generative endpoints
type AIHandler struct {
	aiService *service.AIService
}

// NewAIHandler creates a new AI handler
func NewAIHandler(aiService *service.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// Generate drafts form fields from a description
func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}

	var input domain.GenerateFormRequest
	if !decode(w, r, &input) {
		return
	}

	result, err := h.aiService.GenerateFormSchema(r.Context(), userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, result)
}

// Insights summarizes recent responses of a form
func (h *AIHandler) Insights(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	formID, ok := uuidParam(w, r, "formID")
	if !ok {
		return
	}

	q := r.URL.Query()
	result, err := h.aiService.Insights(r.Context(), userID, formID, q.Get("provider"), q.Get("model"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, result)
}

// Providers lists the registered text generation providers
func (h *AIHandler) Providers(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{
		"providers": h.aiService.Providers(),
	})
}
