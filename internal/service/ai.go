package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/opsflow/internal/authz"
	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/llm"
	"github.com/Rrens/opsflow/internal/metrics"
)

// insightSampleSize bounds how many recent submissions are sent for analysis
const insightSampleSize = 50

// AIService drafts form schemas and summarizes submissions with a text model
type AIService struct {
	llmRouter      *llm.Router
	formRepo       domain.FormRepository
	submissionRepo domain.SubmissionRepository
	cache          AnalyticsCache
	access         *access
}

// NewAIService creates a new AI service. cache may be nil.
func NewAIService(
	llmRouter *llm.Router,
	formRepo domain.FormRepository,
	submissionRepo domain.SubmissionRepository,
	workspaceRepo domain.WorkspaceRepository,
	policy Authorizer,
	cache AnalyticsCache,
) *AIService {
	return &AIService{
		llmRouter:      llmRouter,
		formRepo:       formRepo,
		submissionRepo: submissionRepo,
		cache:          cache,
		access:         &access{workspaces: workspaceRepo, forms: formRepo, policy: policy},
	}
}

// GenerateFormSchema asks the model for a field list. When a form id is given
// the requester needs form:update there and the form's content is replaced.
func (s *AIService) GenerateFormSchema(ctx context.Context, requesterID uuid.UUID, req domain.GenerateFormRequest) (*domain.GeneratedForm, error) {
	var form *domain.Form
	if req.FormID != nil && *req.FormID != "" {
		formID, err := uuid.Parse(*req.FormID)
		if err != nil {
			return nil, &domain.ValidationError{Fields: map[string]string{"form_id": "must be a valid UUID"}}
		}
		form, err = s.access.form(ctx, formID, requesterID, authz.FormUpdate)
		if err != nil {
			return nil, err
		}
	}

	resp, provider, err := s.generate(ctx, "generate_form", req.Provider, req.Model, llm.BuildFormSchemaPrompt(req.Description), 0.2)
	if err != nil {
		return nil, err
	}

	var fields []domain.Field
	if err := llm.DecodeJSONArray(resp.Text, &fields); err != nil {
		return nil, fmt.Errorf("%w: model returned a malformed form schema: %v", domain.ErrUpstream, err)
	}
	if err := domain.ValidateFields(fields); err != nil {
		return nil, fmt.Errorf("%w: model returned an invalid form schema: %v", domain.ErrUpstream, err)
	}

	result := &domain.GeneratedForm{
		Content:    fields,
		Provider:   provider,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
	}

	if form != nil {
		form.Content = fields
		form.UpdatedAt = time.Now().UTC()
		if err := s.formRepo.Update(ctx, form); err != nil {
			return nil, fmt.Errorf("failed to update form: %w", err)
		}
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, form.ID); err != nil {
				log.Warn().Err(err).Str("form_id", form.ID.String()).Msg("Failed to invalidate analytics cache")
			}
		}
		result.Form = form
	}

	return result, nil
}

// Insights summarizes the most recent submissions of a form
func (s *AIService) Insights(ctx context.Context, requesterID, formID uuid.UUID, providerName, model string) (*domain.InsightResult, error) {
	form, err := s.access.form(ctx, formID, requesterID, authz.ResponseRead)
	if err != nil {
		return nil, err
	}

	subs, err := s.submissionRepo.Recent(ctx, formID, insightSampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}
	if len(subs) == 0 {
		return &domain.InsightResult{Insights: []domain.Insight{}, Message: domain.NoInsightDataMessage}, nil
	}

	answers := make([]map[string]any, len(subs))
	for i, sub := range subs {
		answers[i] = sub.Data
	}
	prompt, err := llm.BuildInsightPrompt(form.Content, answers)
	if err != nil {
		return nil, err
	}

	resp, _, err := s.generate(ctx, "insights", providerName, model, prompt, 0.4)
	if err != nil {
		return nil, err
	}

	var insights []domain.Insight
	if err := llm.DecodeJSONArray(resp.Text, &insights); err != nil {
		return nil, fmt.Errorf("%w: model returned malformed insights: %v", domain.ErrUpstream, err)
	}

	return &domain.InsightResult{Insights: insights}, nil
}

// Providers describes every registered provider
func (s *AIService) Providers() []llm.ProviderInfo {
	return s.llmRouter.GetProvidersInfo()
}

func (s *AIService) generate(ctx context.Context, operation, providerName, model, prompt string, temperature float32) (*llm.Response, string, error) {
	provider, err := s.llmRouter.GetProvider(providerName)
	if err != nil {
		return nil, "", &domain.ValidationError{Fields: map[string]string{"provider": err.Error()}}
	}
	if model == "" {
		model = provider.DefaultModel()
	}

	start := time.Now()
	resp, err := provider.Generate(ctx, llm.Request{
		Prompt:      prompt,
		System:      llm.SystemPrompt,
		Temperature: temperature,
		MaxTokens:   llm.DefaultMaxTokens,
	}, model)
	metrics.AIRequestDuration.WithLabelValues(operation, provider.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues(operation, provider.Name(), metrics.StatusError).Inc()
		log.Error().Err(err).
			Str("provider", provider.Name()).
			Str("model", model).
			Str("operation", operation).
			Msg("Text generation failed")
		return nil, "", fmt.Errorf("%w: text generation failed", domain.ErrUpstream)
	}
	metrics.AIRequestsTotal.WithLabelValues(operation, provider.Name(), metrics.StatusOK).Inc()

	if resp.Model == "" {
		resp.Model = model
	}
	return resp, provider.Name(), nil
}
