package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared by services and handlers
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("access denied")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream service error")
	ErrRateLimited  = errors.New("rate limit exceeded")

	ErrInvalidCredentials  = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrEmailTaken          = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrAlreadyMember       = fmt.Errorf("%w: user is already a member", ErrConflict)
	ErrDuplicateSubmission = fmt.Errorf("%w: you have already submitted this form", ErrConflict)
	ErrCannotRemoveOwner   = fmt.Errorf("%w: cannot remove owner", ErrValidation)
	ErrEmailRequired       = fmt.Errorf("%w: email is required for this form", ErrValidation)
	ErrUserNotFound        = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrFormNotFound        = fmt.Errorf("%w: form not found", ErrNotFound)
	ErrMemberNotFound      = fmt.Errorf("%w: member not found", ErrNotFound)
)

// ValidationError carries per-field problems
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) hold for field errors
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
