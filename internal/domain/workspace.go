package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a membership role inside a workspace, also used as the global user tag
type Role string

// Role constants
const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// IsMemberRole reports whether r can be stored on a membership entry.
// Ownership is a workspace attribute, never a stored member role.
func (r Role) IsMemberRole() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Workspace represents a tenant workspace
type Workspace struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Slug      string            `json:"slug"`
	OwnerID   uuid.UUID         `json:"owner_id"`
	Members   []WorkspaceMember `json:"members"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// WorkspaceMember represents one membership entry
type WorkspaceMember struct {
	UserID   uuid.UUID `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// WorkspaceCreate represents workspace creation data
type WorkspaceCreate struct {
	Name string `json:"name" validate:"required,max=255"`
}

// MemberAdd represents an invitation by email
type MemberAdd struct {
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"required,oneof=admin editor viewer"`
}

// MemberView is a membership entry expanded with the principal's profile
type MemberView struct {
	UserID   uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// RoleOf returns the effective role of userID, reporting RoleOwner for the owner
func (w *Workspace) RoleOf(userID uuid.UUID) (Role, bool) {
	if w.OwnerID == userID {
		return RoleOwner, true
	}
	for _, m := range w.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// HasMember reports whether userID has a membership entry
func (w *Workspace) HasMember(userID uuid.UUID) bool {
	for _, m := range w.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// NewSlug derives a workspace slug from its name. The four-digit suffix comes from
// the clock, so two workspaces with the same name can still collide.
func NewSlug(name string, now time.Time) string {
	base := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	millis := fmt.Sprintf("%d", now.UnixMilli())
	if len(millis) > 4 {
		millis = millis[len(millis)-4:]
	}
	return base + "-" + millis
}
