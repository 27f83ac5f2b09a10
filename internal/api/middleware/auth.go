package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/opsflow/internal/api/response"
	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/security"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalLoader resolves the subject of a token. It returns nil when the principal is gone.
type PrincipalLoader interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// AuthMiddleware handles bearer token authentication
type AuthMiddleware struct {
	jwtManager *security.JWTManager
	loader     PrincipalLoader
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *security.JWTManager, loader PrincipalLoader) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, loader: loader}
}

// Authenticate validates the access token and attaches the principal to the request.
// Every failure gets the same 401 body.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			response.Unauthorized(w, "unauthorized")
			return
		}

		claims, err := m.jwtManager.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			log.Debug().Err(err).Msg("Rejected access token")
			response.Unauthorized(w, "unauthorized")
			return
		}

		user, err := m.loader.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			log.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("Failed to load principal")
			response.Unauthorized(w, "unauthorized")
			return
		}
		if user == nil {
			response.Unauthorized(w, "unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
	})
}

// RequireRole only lets principals carrying the given global role through
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetPrincipal(r.Context())
			if !ok {
				response.Unauthorized(w, "unauthorized")
				return
			}
			if user.Role != role {
				response.Forbidden(w, domain.ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal stores the resolved principal in ctx
func WithPrincipal(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}

// GetPrincipal gets the resolved principal from context
func GetPrincipal(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(principalKey).(*domain.User)
	return user, ok && user != nil
}

// GetUserID gets the principal's ID from context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	user, ok := GetPrincipal(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}
