package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Rrens/opsflow/internal/authz"
	"github.com/Rrens/opsflow/internal/domain"
)

// Authorizer decides whether a workspace role may perform an action
type Authorizer interface {
	Allow(role domain.Role, action authz.Action) (bool, error)
}

// AnalyticsCache stores computed analytics per form. Get returns nil on a miss.
type AnalyticsCache interface {
	Get(ctx context.Context, formID uuid.UUID) (*domain.FormAnalytics, error)
	Set(ctx context.Context, formID uuid.UUID, result *domain.FormAnalytics) error
	Invalidate(ctx context.Context, formID uuid.UUID) error
}

// access resolves the requester's role in a workspace and checks it against the policy.
// A missing workspace and a non-member both come back as ErrForbidden.
type access struct {
	workspaces domain.WorkspaceRepository
	forms      domain.FormRepository
	policy     Authorizer
}

func (a *access) workspace(ctx context.Context, workspaceID, userID uuid.UUID, action authz.Action) (*domain.Workspace, domain.Role, error) {
	workspace, err := a.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil {
		return nil, "", domain.ErrForbidden
	}

	role, ok := workspace.RoleOf(userID)
	if !ok {
		return nil, "", domain.ErrForbidden
	}

	allowed, err := a.policy.Allow(role, action)
	if err != nil {
		return nil, "", fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if !allowed {
		return nil, "", domain.ErrForbidden
	}

	return workspace, role, nil
}

// form loads a form and checks action in its workspace
func (a *access) form(ctx context.Context, formID, userID uuid.UUID, action authz.Action) (*domain.Form, error) {
	form, err := a.forms.GetByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	if form == nil {
		return nil, domain.ErrFormNotFound
	}

	if _, _, err := a.workspace(ctx, form.WorkspaceID, userID, action); err != nil {
		return nil, err
	}
	return form, nil
}
