package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Rrens/opsflow/internal/domain"
)

// FormRepository handles form data access. Content, theme and settings are JSONB.
type FormRepository struct {
	db *DB
}

// NewFormRepository creates a new form repository
func NewFormRepository(db *DB) *FormRepository {
	return &FormRepository{db: db}
}

type formJSON struct {
	content  []byte
	theme    []byte
	settings []byte
}

func marshalForm(form *domain.Form) (formJSON, error) {
	var out formJSON
	var err error

	content := form.Content
	if content == nil {
		content = []domain.Field{}
	}
	if out.content, err = json.Marshal(content); err != nil {
		return out, fmt.Errorf("failed to marshal content: %w", err)
	}

	theme := form.Theme
	if theme == nil {
		theme = domain.Theme{}
	}
	if out.theme, err = json.Marshal(theme); err != nil {
		return out, fmt.Errorf("failed to marshal theme: %w", err)
	}

	if out.settings, err = json.Marshal(form.Settings); err != nil {
		return out, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return out, nil
}

// Create creates a new form
func (r *FormRepository) Create(ctx context.Context, form *domain.Form) error {
	docs, err := marshalForm(form)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO forms (id, workspace_id, creator_id, name, description, is_published,
			submissions_count, content, theme, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		form.ID,
		form.WorkspaceID,
		form.CreatorID,
		form.Name,
		form.Description,
		form.IsPublished,
		form.SubmissionsCount,
		docs.content,
		docs.theme,
		docs.settings,
		form.CreatedAt,
		form.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}

	return nil
}

const formColumns = `id, workspace_id, creator_id, name, description, is_published,
	submissions_count, content, theme, settings, created_at, updated_at`

func scanForm(row pgx.Row) (*domain.Form, error) {
	var form domain.Form
	var content, theme, settings []byte

	err := row.Scan(
		&form.ID,
		&form.WorkspaceID,
		&form.CreatorID,
		&form.Name,
		&form.Description,
		&form.IsPublished,
		&form.SubmissionsCount,
		&content,
		&theme,
		&settings,
		&form.CreatedAt,
		&form.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(content, &form.Content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal content: %w", err)
	}
	if err := json.Unmarshal(theme, &form.Theme); err != nil {
		return nil, fmt.Errorf("failed to unmarshal theme: %w", err)
	}
	if err := json.Unmarshal(settings, &form.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &form, nil
}

// GetByID retrieves a form by ID
func (r *FormRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Form, error) {
	form, err := scanForm(r.db.Pool.QueryRow(ctx, `SELECT `+formColumns+` FROM forms WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return form, nil
}

// ListByWorkspace returns the workspace's forms, newest first
func (r *FormRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Form, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+formColumns+`
		FROM forms
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	defer rows.Close()

	forms := []*domain.Form{}
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form: %w", err)
		}
		forms = append(forms, form)
	}

	return forms, rows.Err()
}

// Update writes the mutable attributes of form
func (r *FormRepository) Update(ctx context.Context, form *domain.Form) error {
	docs, err := marshalForm(form)
	if err != nil {
		return err
	}

	query := `
		UPDATE forms
		SET name = $2, description = $3, is_published = $4,
			content = $5, theme = $6, settings = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		form.ID,
		form.Name,
		form.Description,
		form.IsPublished,
		docs.content,
		docs.theme,
		docs.settings,
		form.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFormNotFound
	}

	return nil
}

// Delete removes the form when creatorID created it
func (r *FormRepository) Delete(ctx context.Context, id, creatorID uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM forms WHERE id = $1 AND creator_id = $2`, id, creatorID)
	if err != nil {
		return false, fmt.Errorf("failed to delete form: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementSubmissions bumps the stored submission counter by one
func (r *FormRepository) IncrementSubmissions(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE forms SET submissions_count = submissions_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment submissions: %w", err)
	}
	return nil
}
