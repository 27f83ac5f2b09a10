package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pagination defaults for submission listings
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Submission represents one response to a form
type Submission struct {
	ID              uuid.UUID      `json:"id"`
	FormID          uuid.UUID      `json:"form_id"`
	Data            map[string]any `json:"data"`
	RespondentEmail string         `json:"respondent_email,omitempty"`
	// DedupeKey is set only when the form allows one response per email
	DedupeKey   string    `json:"-"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SubmissionCreate represents a public submission payload. Email is checked
// after normalization, see ValidateRespondentEmail.
type SubmissionCreate struct {
	Data  map[string]any `json:"data"`
	Email string         `json:"email,omitempty" validate:"max=320"`
}

// ValidateRespondentEmail checks an already normalized respondent email.
// Blank is allowed; the form settings decide whether it is required.
func ValidateRespondentEmail(email string) error {
	if email == "" {
		return nil
	}
	if validate.Var(email, "email,max=255") != nil {
		return &ValidationError{Fields: map[string]string{"email": "invalid email format"}}
	}
	return nil
}

// SubmissionFilter selects a page of submissions
type SubmissionFilter struct {
	Page   int
	Limit  int
	Search string
}

// Normalize applies defaults and bounds
func (f SubmissionFilter) Normalize() SubmissionFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	return f
}

// Offset returns the number of rows to skip
func (f SubmissionFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Pagination describes a page within a listing
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination computes the page count for total items
func NewPagination(page, limit int, total int64) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// SubmissionPage is one page of submissions
type SubmissionPage struct {
	Submissions []*Submission `json:"submissions"`
	Pagination  Pagination    `json:"pagination"`
}
