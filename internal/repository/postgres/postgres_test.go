package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/opsflow/internal/domain"
)

// TEST_POSTGRES_DSN must point at a disposable database; migrations are applied to it.
func setupDB(t *testing.T) *DB {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	require.NoError(t, RunMigrations(dsn, "file://../../../migrations"))

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	db := &DB{Pool: pool}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `TRUNCATE submissions, forms, workspace_members, workspaces, users`)
		db.Close()
	})
	return db
}

func createUser(t *testing.T, users *UserRepository, email string) *domain.User {
	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.New(),
		Name:         "Tester",
		Email:        email,
		PasswordHash: "hash",
		Role:         domain.RoleViewer,
		Provider:     domain.ProviderEmail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestWorkspaceRepository_Membership(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	workspaces := NewWorkspaceRepository(db)

	owner := createUser(t, users, "owner@example.com")
	member := createUser(t, users, "member@example.com")

	assert.ErrorIs(t, users.Create(ctx, &domain.User{ID: uuid.New(), Email: "owner@example.com"}), domain.ErrEmailTaken)

	now := time.Now().UTC()
	ws := &domain.Workspace{
		ID:        uuid.New(),
		Name:      "Acme",
		Slug:      domain.NewSlug("Acme", now),
		OwnerID:   owner.ID,
		Members:   []domain.WorkspaceMember{{UserID: owner.ID, Role: domain.RoleAdmin, JoinedAt: now}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, workspaces.CreateWithOwner(ctx, ws))

	gotOwner, err := users.GetByEmail(ctx, "OWNER@example.com ")
	require.NoError(t, err)
	require.Len(t, gotOwner.Workspaces, 1)
	assert.Equal(t, domain.RoleAdmin, gotOwner.Workspaces[0].Role)

	require.NoError(t, workspaces.AddMember(ctx, ws.ID, domain.WorkspaceMember{UserID: member.ID, Role: domain.RoleViewer, JoinedAt: now}))
	assert.ErrorIs(t, workspaces.AddMember(ctx, ws.ID, domain.WorkspaceMember{UserID: member.ID, Role: domain.RoleEditor, JoinedAt: now}), domain.ErrAlreadyMember)

	got, err := workspaces.GetByID(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 2)
	assert.Equal(t, owner.ID, got.Members[0].UserID)
	assert.Equal(t, member.ID, got.Members[1].UserID)

	require.NoError(t, workspaces.RemoveMember(ctx, ws.ID, member.ID))
	assert.ErrorIs(t, workspaces.RemoveMember(ctx, ws.ID, member.ID), domain.ErrMemberNotFound)

	listed, err := workspaces.ListByMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestFormAndSubmissionRepositories(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	workspaces := NewWorkspaceRepository(db)
	forms := NewFormRepository(db)
	subs := NewSubmissionRepository(db)

	owner := createUser(t, users, "creator@example.com")
	now := time.Now().UTC()
	ws := &domain.Workspace{ID: uuid.New(), Name: "W", Slug: "w-0001", OwnerID: owner.ID, CreatedAt: now, UpdatedAt: now,
		Members: []domain.WorkspaceMember{{UserID: owner.ID, Role: domain.RoleAdmin, JoinedAt: now}}}
	require.NoError(t, workspaces.CreateWithOwner(ctx, ws))

	form := &domain.Form{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		CreatorID:   owner.ID,
		Name:        domain.DefaultFormName,
		Content:     []domain.Field{{ID: "f1", Type: domain.FieldSelect, Label: "Plan", Options: []string{"A", "B"}}},
		Theme:       domain.Theme{"primary": "#000"},
		Settings:    domain.FormSettings{CollectEmails: true, LimitOneResponse: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, forms.Create(ctx, form))

	got, err := forms.GetByID(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, form.Content, got.Content)
	assert.Equal(t, form.Settings, got.Settings)

	for i, email := range []string{"a@example.com", "b@example.com"} {
		require.NoError(t, subs.Create(ctx, &domain.Submission{
			ID:              uuid.New(),
			FormID:          form.ID,
			Data:            map[string]any{"f1": "A"},
			RespondentEmail: email,
			DedupeKey:       email,
			SubmittedAt:     now.Add(time.Duration(i) * time.Minute),
		}))
		require.NoError(t, forms.IncrementSubmissions(ctx, form.ID))
	}

	err = subs.Create(ctx, &domain.Submission{ID: uuid.New(), FormID: form.ID, RespondentEmail: "a@example.com", DedupeKey: "a@example.com", SubmittedAt: now})
	assert.ErrorIs(t, err, domain.ErrDuplicateSubmission)

	n, err := subs.Count(ctx, form.ID, "B@EX")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	page, err := subs.List(ctx, form.ID, domain.SubmissionFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b@example.com", page[0].RespondentEmail)

	got, err = forms.GetByID(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.SubmissionsCount)

	deleted, err := forms.Delete(ctx, form.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = forms.Delete(ctx, form.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	all, err := subs.ListAll(ctx, form.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2, "submissions survive form deletion")
}
