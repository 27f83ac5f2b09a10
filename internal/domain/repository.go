package domain

import (
	"context"

	"github.com/google/uuid"
)

// Lookups return (nil, nil) when the record does not exist.

// UserRepository persists principals
type UserRepository interface {
	// Create fails with ErrEmailTaken when the email is already registered
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)
}

// WorkspaceRepository persists workspaces and both sides of each membership
type WorkspaceRepository interface {
	// CreateWithOwner inserts the workspace and the owner's back-reference atomically
	CreateWithOwner(ctx context.Context, workspace *Workspace) error
	GetByID(ctx context.Context, id uuid.UUID) (*Workspace, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*Workspace, error)
	// AddMember fails with ErrAlreadyMember when the user already has an entry
	AddMember(ctx context.Context, workspaceID uuid.UUID, member WorkspaceMember) error
	// RemoveMember fails with ErrMemberNotFound when the user has no entry
	RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error
}

// FormRepository persists form definitions
type FormRepository interface {
	Create(ctx context.Context, form *Form) error
	GetByID(ctx context.Context, id uuid.UUID) (*Form, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*Form, error)
	// Update writes every mutable attribute except submissions_count
	Update(ctx context.Context, form *Form) error
	// Delete removes the form only if creatorID created it
	Delete(ctx context.Context, id, creatorID uuid.UUID) (bool, error)
	IncrementSubmissions(ctx context.Context, id uuid.UUID) error
}

// SubmissionRepository persists form submissions
type SubmissionRepository interface {
	// Create fails with ErrDuplicateSubmission when the dedupe key is taken
	Create(ctx context.Context, submission *Submission) error
	ExistsForRespondent(ctx context.Context, formID uuid.UUID, dedupeKey string) (bool, error)
	// List returns one page, newest first
	List(ctx context.Context, formID uuid.UUID, filter SubmissionFilter) ([]*Submission, error)
	Count(ctx context.Context, formID uuid.UUID, search string) (int64, error)
	// ListAll returns every submission, oldest first
	ListAll(ctx context.Context, formID uuid.UUID) ([]*Submission, error)
	// Recent returns up to limit submissions, newest first
	Recent(ctx context.Context, formID uuid.UUID, limit int) ([]*Submission, error)
}
