package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Rrens/opsflow/internal/domain"
)

// SubmissionRepository handles submission data access
type SubmissionRepository struct {
	db *DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a submission. The partial unique index on (form_id, dedupe_key)
// rejects a second keyed submission for the same respondent.
func (r *SubmissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	data := submission.Data
	if data == nil {
		data = map[string]any{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	var dedupeKey *string
	if submission.DedupeKey != "" {
		dedupeKey = &submission.DedupeKey
	}

	query := `
		INSERT INTO submissions (id, form_id, data, respondent_email, dedupe_key, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		submission.ID,
		submission.FormID,
		dataJSON,
		submission.RespondentEmail,
		dedupeKey,
		submission.SubmittedAt,
	)
	if err != nil {
		if pgErrorCode(err) == uniqueViolation {
			return domain.ErrDuplicateSubmission
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

// ExistsForRespondent reports whether a keyed submission already exists
func (r *SubmissionRepository) ExistsForRespondent(ctx context.Context, formID uuid.UUID, dedupeKey string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM submissions WHERE form_id = $1 AND dedupe_key = $2)`,
		formID, dedupeKey,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check submission: %w", err)
	}
	return exists, nil
}

const (
	submissionColumns = `id, form_id, data, respondent_email, COALESCE(dedupe_key, ''), submitted_at`
	searchClause      = `form_id = $1 AND ($2::text = '' OR position(lower($2::text) IN lower(respondent_email)) > 0)`
)

// List returns one page of submissions, newest first
func (r *SubmissionRepository) List(ctx context.Context, formID uuid.UUID, filter domain.SubmissionFilter) ([]*domain.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE ` + searchClause + `
		ORDER BY submitted_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.query(ctx, query, formID, filter.Search, filter.Limit, filter.Offset())
}

// Count returns the number of submissions matching search
func (r *SubmissionRepository) Count(ctx context.Context, formID uuid.UUID, search string) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM submissions WHERE `+searchClause, formID, search).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return n, nil
}

// ListAll returns every submission for the form, oldest first
func (r *SubmissionRepository) ListAll(ctx context.Context, formID uuid.UUID) ([]*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE form_id = $1 ORDER BY submitted_at ASC`
	return r.query(ctx, query, formID)
}

// Recent returns up to limit submissions, newest first
func (r *SubmissionRepository) Recent(ctx context.Context, formID uuid.UUID, limit int) ([]*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE form_id = $1 ORDER BY submitted_at DESC LIMIT $2`
	return r.query(ctx, query, formID, limit)
}

func (r *SubmissionRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Submission, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	subs := []*domain.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var s domain.Submission
	var data []byte
	if err := row.Scan(&s.ID, &s.FormID, &data, &s.RespondentEmail, &s.DedupeKey, &s.SubmittedAt); err != nil {
		return nil, fmt.Errorf("failed to scan submission: %w", err)
	}
	if err := json.Unmarshal(data, &s.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return &s, nil
}
