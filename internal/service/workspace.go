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

// WorkspaceService handles workspace and membership operations
type WorkspaceService struct {
	workspaceRepo domain.WorkspaceRepository
	userRepo      domain.UserRepository
	access        *access
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(workspaceRepo domain.WorkspaceRepository, userRepo domain.UserRepository, policy Authorizer) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		access:        &access{workspaces: workspaceRepo, policy: policy},
	}
}

// Create creates a workspace and seeds the owner as an admin member
func (s *WorkspaceService) Create(ctx context.Context, ownerID uuid.UUID, input domain.WorkspaceCreate) (*domain.Workspace, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"name": "name is required"}}
	}

	now := time.Now().UTC()
	workspace := &domain.Workspace{
		ID:      uuid.New(),
		Name:    name,
		Slug:    domain.NewSlug(name, now),
		OwnerID: ownerID,
		Members: []domain.WorkspaceMember{
			{UserID: ownerID, Role: domain.RoleAdmin, JoinedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.workspaceRepo.CreateWithOwner(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	log.Info().
		Str("workspace_id", workspace.ID.String()).
		Str("owner_id", ownerID.String()).
		Msg("Workspace created")

	return workspace, nil
}

// List returns every workspace the user belongs to
func (s *WorkspaceService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Workspace, error) {
	workspaces, err := s.workspaceRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

// Get returns a workspace the requester belongs to
func (s *WorkspaceService) Get(ctx context.Context, requesterID, workspaceID uuid.UUID) (*domain.Workspace, error) {
	workspace, _, err := s.access.workspace(ctx, workspaceID, requesterID, authz.WorkspaceRead)
	return workspace, err
}

// AddMember invites an existing principal by email
func (s *WorkspaceService) AddMember(ctx context.Context, requesterID, workspaceID uuid.UUID, input domain.MemberAdd) (*domain.MemberView, error) {
	workspace, _, err := s.access.workspace(ctx, workspaceID, requesterID, authz.MemberAdd)
	if err != nil {
		return nil, err
	}

	if !input.Role.IsMemberRole() {
		return nil, &domain.ValidationError{Fields: map[string]string{"role": "must be one of admin, editor, viewer"}}
	}

	target, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return nil, domain.ErrUserNotFound
	}

	if target.ID == workspace.OwnerID || workspace.HasMember(target.ID) {
		return nil, domain.ErrAlreadyMember
	}

	member := domain.WorkspaceMember{
		UserID:   target.ID,
		Role:     input.Role,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.workspaceRepo.AddMember(ctx, workspaceID, member); err != nil {
		return nil, err
	}

	return &domain.MemberView{
		UserID:   target.ID,
		Name:     target.Name,
		Email:    target.Email,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}, nil
}

// RemoveMember drops a member from both sides of the relation. The owner cannot be removed.
func (s *WorkspaceService) RemoveMember(ctx context.Context, requesterID, workspaceID, userID uuid.UUID) error {
	workspace, _, err := s.access.workspace(ctx, workspaceID, requesterID, authz.MemberRemove)
	if err != nil {
		return err
	}

	if userID == workspace.OwnerID {
		return domain.ErrCannotRemoveOwner
	}
	if !workspace.HasMember(userID) {
		return domain.ErrMemberNotFound
	}

	return s.workspaceRepo.RemoveMember(ctx, workspaceID, userID)
}

// ListMembers returns the owner first, tagged owner, followed by the other members
func (s *WorkspaceService) ListMembers(ctx context.Context, requesterID, workspaceID uuid.UUID) ([]domain.MemberView, error) {
	workspace, _, err := s.access.workspace(ctx, workspaceID, requesterID, authz.MemberList)
	if err != nil {
		return nil, err
	}

	ownerJoined := workspace.CreatedAt
	ids := []uuid.UUID{workspace.OwnerID}
	for _, m := range workspace.Members {
		if m.UserID == workspace.OwnerID {
			ownerJoined = m.JoinedAt
			continue
		}
		ids = append(ids, m.UserID)
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	profiles := make(map[uuid.UUID]*domain.User, len(users))
	for _, u := range users {
		profiles[u.ID] = u
	}

	view := func(id uuid.UUID, role domain.Role, joined time.Time) domain.MemberView {
		v := domain.MemberView{UserID: id, Role: role, JoinedAt: joined}
		if u := profiles[id]; u != nil {
			v.Name = u.Name
			v.Email = u.Email
		}
		return v
	}

	members := make([]domain.MemberView, 0, len(ids))
	members = append(members, view(workspace.OwnerID, domain.RoleOwner, ownerJoined))
	for _, m := range workspace.Members {
		if m.UserID == workspace.OwnerID {
			continue
		}
		members = append(members, view(m.UserID, m.Role, m.JoinedAt))
	}

	return members, nil
}
