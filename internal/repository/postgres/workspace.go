package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Rrens/opsflow/internal/domain"
)

// WorkspaceRepository handles workspace data access. The workspace_members table
// is the single source for both directions of a membership.
type WorkspaceRepository struct {
	db *DB
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db *DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// CreateWithOwner inserts the workspace and its seeded members in one transaction
func (r *WorkspaceRepository) CreateWithOwner(ctx context.Context, workspace *domain.Workspace) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO workspaces (id, name, slug, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		workspace.ID,
		workspace.Name,
		workspace.Slug,
		workspace.OwnerID,
		workspace.CreatedAt,
		workspace.UpdatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	for _, m := range workspace.Members {
		_, err := tx.Exec(ctx, `
			INSERT INTO workspace_members (workspace_id, user_id, role, joined_at)
			VALUES ($1, $2, $3, $4)
		`, workspace.ID, m.UserID, string(m.Role), m.JoinedAt)
		if err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a workspace by ID
func (r *WorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	query := `
		SELECT id, name, slug, owner_id, created_at, updated_at
		FROM workspaces
		WHERE id = $1
	`

	var workspace domain.Workspace
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&workspace.ID,
		&workspace.Name,
		&workspace.Slug,
		&workspace.OwnerID,
		&workspace.CreatedAt,
		&workspace.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	members, err := r.loadMembers(ctx, []uuid.UUID{workspace.ID})
	if err != nil {
		return nil, err
	}
	workspace.Members = members[workspace.ID]
	if workspace.Members == nil {
		workspace.Members = []domain.WorkspaceMember{}
	}

	return &workspace, nil
}

// ListByMember returns workspaces userID belongs to, newest first
func (r *WorkspaceRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.Workspace, error) {
	query := `
		SELECT w.id, w.name, w.slug, w.owner_id, w.created_at, w.updated_at
		FROM workspaces w
		INNER JOIN workspace_members wm ON w.id = wm.workspace_id
		WHERE wm.user_id = $1
		ORDER BY w.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := []*domain.Workspace{}
	var ids []uuid.UUID
	for rows.Next() {
		var w domain.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.Slug, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, &w)
		ids = append(ids, w.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workspaces: %w", err)
	}

	members, err := r.loadMembers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, w := range workspaces {
		w.Members = members[w.ID]
		if w.Members == nil {
			w.Members = []domain.WorkspaceMember{}
		}
	}

	return workspaces, nil
}

func (r *WorkspaceRepository) loadMembers(ctx context.Context, workspaceIDs []uuid.UUID) (map[uuid.UUID][]domain.WorkspaceMember, error) {
	out := make(map[uuid.UUID][]domain.WorkspaceMember, len(workspaceIDs))
	if len(workspaceIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT workspace_id, user_id, role, joined_at
		FROM workspace_members
		WHERE workspace_id = ANY($1::uuid[])
		ORDER BY seq
	`, uuidStrings(workspaceIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var wsID uuid.UUID
		var m domain.WorkspaceMember
		var role string
		if err := rows.Scan(&wsID, &m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Role = domain.Role(role)
		out[wsID] = append(out[wsID], m)
	}
	return out, rows.Err()
}

// AddMember adds a membership row. The composite primary key rejects duplicates.
func (r *WorkspaceRepository) AddMember(ctx context.Context, workspaceID uuid.UUID, member domain.WorkspaceMember) error {
	query := `
		INSERT INTO workspace_members (workspace_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workspace_id, user_id) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query, workspaceID, member.UserID, string(member.Role), member.JoinedAt)
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyMember
	}

	return nil
}

// RemoveMember deletes a membership row
func (r *WorkspaceRepository) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	query := `DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, workspaceID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}
