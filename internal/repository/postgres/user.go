package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Rrens/opsflow/internal/domain"
)

// UserRepository handles principal data access
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new principal
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, provider, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Provider,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == uniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

const userColumns = `id, name, email, password_hash, role, provider, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.Provider,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	user, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := r.loadWorkspaces(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) loadWorkspaces(ctx context.Context, user *domain.User) error {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT workspace_id, role FROM workspace_members
		WHERE user_id = $1
		ORDER BY seq
	`, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load user workspaces: %w", err)
	}
	defer rows.Close()

	user.Workspaces = []domain.UserWorkspace{}
	for rows.Next() {
		var ref domain.UserWorkspace
		var role string
		if err := rows.Scan(&ref.WorkspaceID, &role); err != nil {
			return fmt.Errorf("failed to scan user workspace: %w", err)
		}
		ref.Role = domain.Role(role)
		user.Workspaces = append(user.Workspaces, ref)
	}
	return rows.Err()
}

// GetByID retrieves a principal by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail retrieves a principal by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email = $1", domain.NormalizeEmail(email))
}

// GetByIDs retrieves every listed principal without their workspace lists
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}

	rows, err := r.db.Pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
