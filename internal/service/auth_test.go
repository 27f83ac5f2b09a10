package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/security"
)

func newAuthService(users *MockUserRepository) (*AuthService, *security.JWTManager) {
	jwt := security.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(users, jwt), jwt
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newAuthService(users)
		users.On("GetByEmail", ctx, "new@example.com").Return(nil, nil)
		users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := svc.Register(ctx, domain.UserCreate{Name: "New", Email: " New@Example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, domain.RoleViewer, user.Role)
		assert.Equal(t, domain.ProviderEmail, user.Provider)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
		users.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newAuthService(users)
		users.On("GetByEmail", ctx, "dup@example.com").Return(&domain.User{ID: uuid.New()}, nil)

		_, err := svc.Register(ctx, domain.UserCreate{Name: "Dup", Email: "dup@example.com", Password: "password123"})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: uuid.New(), Email: "u@example.com", PasswordHash: string(hash), Role: domain.RoleViewer}

	users := new(MockUserRepository)
	svc, jwt := newAuthService(users)
	users.On("GetByEmail", ctx, "u@example.com").Return(user, nil)
	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil)

	session, err := svc.Login(ctx, domain.UserLogin{Email: "u@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user, session.User)
	assert.Equal(t, int64(900), session.ExpiresIn)

	claims, err := jwt.ValidateAccessToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = svc.Login(ctx, domain.UserLogin{Email: "u@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.UserLogin{Email: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Email: "u@example.com", Role: domain.RoleAdmin}

	users := new(MockUserRepository)
	svc, jwt := newAuthService(users)

	refresh, err := jwt.GenerateRefreshToken(user.ID)
	require.NoError(t, err)
	access, err := jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		users.On("GetByID", ctx, user.ID).Return(user, nil).Once()

		session, err := svc.Refresh(ctx, refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, access)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("deleted principal", func(t *testing.T) {
		users.On("GetByID", ctx, user.ID).Return(nil, nil).Once()

		_, err := svc.Refresh(ctx, refresh)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
