package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/llm"
)

// MockUserRepository mocks domain.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*domain.User), args.Error(1)
}

// MockWorkspaceRepository mocks domain.WorkspaceRepository
type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) CreateWithOwner(ctx context.Context, workspace *domain.Workspace) error {
	args := m.Called(ctx, workspace)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.Workspace, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) AddMember(ctx context.Context, workspaceID uuid.UUID, member domain.WorkspaceMember) error {
	args := m.Called(ctx, workspaceID, member)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, userID)
	return args.Error(0)
}

// MockFormRepository mocks domain.FormRepository
type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) Create(ctx context.Context, form *domain.Form) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *MockFormRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Form, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Form, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]*domain.Form), args.Error(1)
}

func (m *MockFormRepository) Update(ctx context.Context, form *domain.Form) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *MockFormRepository) Delete(ctx context.Context, id, creatorID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, creatorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFormRepository) IncrementSubmissions(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSubmissionRepository mocks domain.SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) ExistsForRespondent(ctx context.Context, formID uuid.UUID, dedupeKey string) (bool, error) {
	args := m.Called(ctx, formID, dedupeKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubmissionRepository) List(ctx context.Context, formID uuid.UUID, filter domain.SubmissionFilter) ([]*domain.Submission, error) {
	args := m.Called(ctx, formID, filter)
	return args.Get(0).([]*domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Count(ctx context.Context, formID uuid.UUID, search string) (int64, error) {
	args := m.Called(ctx, formID, search)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubmissionRepository) ListAll(ctx context.Context, formID uuid.UUID) ([]*domain.Submission, error) {
	args := m.Called(ctx, formID)
	return args.Get(0).([]*domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Recent(ctx context.Context, formID uuid.UUID, limit int) ([]*domain.Submission, error) {
	args := m.Called(ctx, formID, limit)
	return args.Get(0).([]*domain.Submission), args.Error(1)
}

// MockAnalyticsCache mocks AnalyticsCache
type MockAnalyticsCache struct {
	mock.Mock
}

func (m *MockAnalyticsCache) Get(ctx context.Context, formID uuid.UUID) (*domain.FormAnalytics, error) {
	args := m.Called(ctx, formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FormAnalytics), args.Error(1)
}

func (m *MockAnalyticsCache) Set(ctx context.Context, formID uuid.UUID, result *domain.FormAnalytics) error {
	args := m.Called(ctx, formID, result)
	return args.Error(0)
}

func (m *MockAnalyticsCache) Invalidate(ctx context.Context, formID uuid.UUID) error {
	args := m.Called(ctx, formID)
	return args.Error(0)
}

// MockLLMProvider mocks llm.Provider
type MockLLMProvider struct {
	mock.Mock
}

func (m *MockLLMProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockLLMProvider) AvailableModels() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockLLMProvider) DefaultModel() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockLLMProvider) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockLLMProvider) Generate(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}
