package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/opsflow/internal/authz"
	"github.com/Rrens/opsflow/internal/domain"
)

// FormService handles form definitions
type FormService struct {
	formRepo domain.FormRepository
	cache    AnalyticsCache
	access   *access
}

// NewFormService creates a new form service. cache may be nil.
func NewFormService(
	formRepo domain.FormRepository,
	workspaceRepo domain.WorkspaceRepository,
	policy Authorizer,
	cache AnalyticsCache,
) *FormService {
	return &FormService{
		formRepo: formRepo,
		cache:    cache,
		access:   &access{workspaces: workspaceRepo, forms: formRepo, policy: policy},
	}
}

// Create creates an empty form in a workspace
func (s *FormService) Create(ctx context.Context, requesterID uuid.UUID, input domain.FormCreate) (*domain.Form, error) {
	if _, _, err := s.access.workspace(ctx, input.WorkspaceID, requesterID, authz.FormCreate); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = domain.DefaultFormName
	}

	now := time.Now().UTC()
	form := &domain.Form{
		ID:          uuid.New(),
		WorkspaceID: input.WorkspaceID,
		CreatorID:   requesterID,
		Name:        name,
		Content:     []domain.Field{},
		Theme:       domain.Theme{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	return form, nil
}

// List returns the forms of a workspace, newest first
func (s *FormService) List(ctx context.Context, requesterID, workspaceID uuid.UUID) ([]*domain.Form, error) {
	if _, _, err := s.access.workspace(ctx, workspaceID, requesterID, authz.FormRead); err != nil {
		return nil, err
	}

	forms, err := s.formRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	return forms, nil
}

// Get returns one form
func (s *FormService) Get(ctx context.Context, requesterID, formID uuid.UUID) (*domain.Form, error) {
	return s.access.form(ctx, formID, requesterID, authz.FormRead)
}

// UpdateContent replaces the field list, theme and settings wholesale
func (s *FormService) UpdateContent(ctx context.Context, requesterID, formID uuid.UUID, input domain.FormContentUpdate) (*domain.Form, error) {
	form, err := s.access.form(ctx, formID, requesterID, authz.FormUpdate)
	if err != nil {
		return nil, err
	}

	content := input.Content
	if content == nil {
		content = []domain.Field{}
	}
	if err := domain.ValidateFields(content); err != nil {
		return nil, err
	}

	theme := input.Theme
	if theme == nil {
		theme = domain.Theme{}
	}

	form.Content = content
	form.Theme = theme
	form.Settings = input.Settings
	form.UpdatedAt = time.Now().UTC()

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to update form: %w", err)
	}

	s.invalidate(ctx, form.ID)
	return form, nil
}

// UpdateDetails changes name, description or the published flag
func (s *FormService) UpdateDetails(ctx context.Context, requesterID, formID uuid.UUID, input domain.FormDetailsUpdate) (*domain.Form, error) {
	form, err := s.access.form(ctx, formID, requesterID, authz.FormUpdate)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, &domain.ValidationError{Fields: map[string]string{"name": "name cannot be empty"}}
		}
		form.Name = name
	}
	if input.Description != nil {
		form.Description = *input.Description
	}
	if input.IsPublished != nil {
		form.IsPublished = *input.IsPublished
	}
	form.UpdatedAt = time.Now().UTC()

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to update form: %w", err)
	}
	return form, nil
}

// Delete removes a form created by the requester. Its submissions are kept.
func (s *FormService) Delete(ctx context.Context, requesterID, formID uuid.UUID) error {
	deleted, err := s.formRepo.Delete(ctx, formID, requesterID)
	if err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	if !deleted {
		return domain.ErrFormNotFound
	}

	s.invalidate(ctx, formID)
	return nil
}

// GetPublic returns the respondent view of a form without authentication
func (s *FormService) GetPublic(ctx context.Context, formID uuid.UUID) (*domain.PublicForm, error) {
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	if form == nil {
		return nil, domain.ErrFormNotFound
	}
	return form.Public(), nil
}

func (s *FormService) invalidate(ctx context.Context, formID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, formID); err != nil {
		log.Warn().Err(err).Str("form_id", formID.String()).Msg("Failed to invalidate analytics cache")
	}
}
