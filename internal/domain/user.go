package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered principal
type User struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Role         Role            `json:"role"`
	Provider     string          `json:"provider"`
	Workspaces   []UserWorkspace `json:"workspaces"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// UserWorkspace is the principal-side reference to a workspace membership
type UserWorkspace struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Role        Role      `json:"role"`
}

// UserCreate represents user registration data
type UserCreate struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserLogin represents login credentials
type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// TokenPair represents JWT token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthSession is returned by login and refresh
type AuthSession struct {
	TokenPair
	User *User `json:"user"`
}

// Provider values
const (
	ProviderEmail = "email"
)

// NormalizeEmail lower-cases and trims an email address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
