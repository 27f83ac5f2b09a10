package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewSlug(t *testing.T) {
	now := time.UnixMilli(1718000004321)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word", "Marketing", "marketing-4321"},
		{"spaces become dashes", "Acme Growth Team", "acme-growth-team-4321"},
		{"mixed case", "QA  Lab", "qa--lab-4321"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewSlug(tt.in, now))
		})
	}
}

func TestNewSlug_Deterministic(t *testing.T) {
	now := time.Now()
	assert.Equal(t, NewSlug("Team", now), NewSlug("Team", now))
}

func TestWorkspace_RoleOf(t *testing.T) {
	owner := uuid.New()
	editor := uuid.New()
	stranger := uuid.New()

	ws := &Workspace{
		OwnerID: owner,
		Members: []WorkspaceMember{
			{UserID: owner, Role: RoleAdmin},
			{UserID: editor, Role: RoleEditor},
		},
	}

	role, ok := ws.RoleOf(owner)
	assert.True(t, ok)
	assert.Equal(t, RoleOwner, role)

	role, ok = ws.RoleOf(editor)
	assert.True(t, ok)
	assert.Equal(t, RoleEditor, role)

	_, ok = ws.RoleOf(stranger)
	assert.False(t, ok)

	assert.True(t, ws.HasMember(editor))
	assert.False(t, ws.HasMember(stranger))
}

func TestRole_IsMemberRole(t *testing.T) {
	assert.True(t, RoleAdmin.IsMemberRole())
	assert.True(t, RoleEditor.IsMemberRole())
	assert.True(t, RoleViewer.IsMemberRole())
	assert.False(t, RoleOwner.IsMemberRole())
	assert.False(t, Role("superuser").IsMemberRole())
}
