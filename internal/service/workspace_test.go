package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/opsflow/internal/domain"
)

func TestWorkspaceService_Create(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("seeds owner as admin member", func(t *testing.T) {
		f := newFixture(t)
		svc := NewWorkspaceService(f.workspaces, f.users, f.policy)

		f.workspaces.On("CreateWithOwner", ctx, mock.MatchedBy(func(ws *domain.Workspace) bool {
			return ws.OwnerID == ownerID &&
				len(ws.Members) == 1 &&
				ws.Members[0].UserID == ownerID &&
				ws.Members[0].Role == domain.RoleAdmin
		})).Return(nil)

		ws, err := svc.Create(ctx, ownerID, domain.WorkspaceCreate{Name: "Growth Team"})
		require.NoError(t, err)
		assert.Equal(t, "Growth Team", ws.Name)
		assert.True(t, strings.HasPrefix(ws.Slug, "growth-team-"))
		f.assertExpectations(t)
	})

	t.Run("blank name", func(t *testing.T) {
		f := newFixture(t)
		svc := NewWorkspaceService(f.workspaces, f.users, f.policy)

		_, err := svc.Create(ctx, ownerID, domain.WorkspaceCreate{Name: "   "})
		assert.ErrorIs(t, err, domain.ErrValidation)
		f.workspaces.AssertNotCalled(t, "CreateWithOwner", mock.Anything, mock.Anything)
	})

	t.Run("missing owner rolls back", func(t *testing.T) {
		f := newFixture(t)
		svc := NewWorkspaceService(f.workspaces, f.users, f.policy)

		f.workspaces.On("CreateWithOwner", ctx, mock.Anything).Return(domain.ErrUserNotFound)

		_, err := svc.Create(ctx, ownerID, domain.WorkspaceCreate{Name: "Ops"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestWorkspaceService_Get(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	ws := team(ownerID)

	f := newFixture(t)
	svc := NewWorkspaceService(f.workspaces, f.users, f.policy)
	f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)
	missing := uuid.New()
	f.workspaces.On("GetByID", ctx, missing).Return(nil, nil)

	got, err := svc.Get(ctx, ownerID, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, ws, got)

	_, err = svc.Get(ctx, uuid.New(), ws.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Get(ctx, ownerID, missing)
	assert.ErrorIs(t, err, domain.ErrForbidden, "missing workspace looks the same as no access")
}

func TestWorkspaceService_AddMember(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	admin := member(domain.RoleAdmin)
	editor := member(domain.RoleEditor)
	ws := team(ownerID, admin, editor)

	target := &domain.User{ID: uuid.New(), Name: "Sam", Email: "sam@example.com"}

	t.Run("admin adds viewer", func(t *testing.T) {
		f := newFixture(t)
		svc := NewWorkspaceService(f.workspaces, f.users, f.policy)

		f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)
		f.users.On("GetByEmail", ctx, "sam@example.com").Return(target, nil)
		f.workspaces.On("AddMember", ctx, ws.ID, mock.MatchedBy(func(m domain.WorkspaceMember) bool {
			return m.UserID == target.ID && m.Role == domain.RoleViewer
		})).Return(nil)

		view, err := svc.AddMember(ctx, admin.UserID, ws.ID, domain.MemberAdd{Email: "sam@example.com", Role: domain.RoleViewer})
		require.NoError(t, err)
		assert.Equal(t, target.ID, view.UserID)
		assert.Equal(t, "Sam", view.Name)
		assert.Equal(t, domain.RoleViewer, view.Role)
		f.assertExpectations(t)
	})

	t.Run("editor is forbidden", func(t *testing.T) {
		f := newFixture(t)
		svc := NewWorkspaceService(f.workspaces, f.users, f.policy)
		f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)

		_, err := svc.AddMember(ctx, editor.UserID, ws.ID, domain.MemberAdd{Email: "sam@example.com", Role: domain.RoleViewer})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		f.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("owner role cannot be granted", func(t *testing.T) {
		f := newFixture(t)
		svc := NewWorkspaceService(f.workspaces, f.users, f.policy)
		f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)

		_, err := svc.AddMember(ctx, ownerID, ws.ID, domain.MemberAdd{Email: "sam@example.com", Role: domain.RoleOwner})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newFixture(t)
		svc := NewWorkspaceService(f.workspaces, f.users, f.policy)
		f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)
		f.users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil)

		_, err := svc.AddMember(ctx, ownerID, ws.ID, domain.MemberAdd{Email: "ghost@example.com", Role: domain.RoleEditor})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("existing member and owner are conflicts", func(t *testing.T) {
		f := newFixture(t)
		svc := NewWorkspaceService(f.workspaces, f.users, f.policy)
		f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)
		f.users.On("GetByEmail", ctx, "ed@example.com").Return(&domain.User{ID: editor.UserID}, nil)
		f.users.On("GetByEmail", ctx, "owner@example.com").Return(&domain.User{ID: ownerID}, nil)

		_, err := svc.AddMember(ctx, ownerID, ws.ID, domain.MemberAdd{Email: "ed@example.com", Role: domain.RoleAdmin})
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)

		_, err = svc.AddMember(ctx, admin.UserID, ws.ID, domain.MemberAdd{Email: "owner@example.com", Role: domain.RoleViewer})
		assert.ErrorIs(t, err, domain.ErrConflict)
		f.workspaces.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWorkspaceService_RemoveMember(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	admin := member(domain.RoleAdmin)
	viewer := member(domain.RoleViewer)
	ws := team(ownerID, admin, viewer)

	tests := []struct {
		name      string
		requester uuid.UUID
		target    uuid.UUID
		repoErr   error
		wantErr   error
	}{
		{name: "admin removes viewer", requester: admin.UserID, target: viewer.UserID},
		{name: "viewer cannot remove", requester: viewer.UserID, target: admin.UserID, wantErr: domain.ErrForbidden},
		{name: "owner cannot be removed", requester: admin.UserID, target: ownerID, wantErr: domain.ErrCannotRemoveOwner},
		{name: "non member", requester: ownerID, target: uuid.New(), wantErr: domain.ErrMemberNotFound},
		{name: "concurrent removal", requester: ownerID, target: viewer.UserID, repoErr: domain.ErrMemberNotFound, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := NewWorkspaceService(f.workspaces, f.users, f.policy)
			f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)
			f.workspaces.On("RemoveMember", ctx, ws.ID, tt.target).Return(tt.repoErr).Maybe()

			err := svc.RemoveMember(ctx, tt.requester, ws.ID, tt.target)
			if tt.wantErr == nil {
				require.NoError(t, err)
				f.workspaces.AssertCalled(t, "RemoveMember", ctx, ws.ID, tt.target)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestWorkspaceService_ListMembers(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	editor := member(domain.RoleEditor)
	ws := team(ownerID, editor)

	f := newFixture(t)
	svc := NewWorkspaceService(f.workspaces, f.users, f.policy)
	f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)
	f.users.On("GetByIDs", ctx, []uuid.UUID{ownerID, editor.UserID}).Return([]*domain.User{
		{ID: editor.UserID, Name: "Ed", Email: "ed@example.com"},
		{ID: ownerID, Name: "Olive", Email: "olive@example.com"},
	}, nil)

	members, err := svc.ListMembers(ctx, editor.UserID, ws.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	assert.Equal(t, ownerID, members[0].UserID)
	assert.Equal(t, domain.RoleOwner, members[0].Role)
	assert.Equal(t, "Olive", members[0].Name)

	assert.Equal(t, editor.UserID, members[1].UserID)
	assert.Equal(t, domain.RoleEditor, members[1].Role)
	assert.Equal(t, "ed@example.com", members[1].Email)
}
