package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/opsflow/internal/domain"
)

func TestFormService_Create(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	editor := member(domain.RoleEditor)
	viewer := member(domain.RoleViewer)
	ws := team(ownerID, editor, viewer)

	t.Run("editor gets default name", func(t *testing.T) {
		f := newFixture(t)
		svc := NewFormService(f.forms, f.workspaces, f.policy, nil)
		f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)
		f.forms.On("Create", ctx, mock.AnythingOfType("*domain.Form")).Return(nil)

		form, err := svc.Create(ctx, editor.UserID, domain.FormCreate{WorkspaceID: ws.ID})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultFormName, form.Name)
		assert.Equal(t, editor.UserID, form.CreatorID)
		assert.Empty(t, form.Content)
		assert.NotNil(t, form.Theme)
		f.assertExpectations(t)
	})

	t.Run("viewer is forbidden", func(t *testing.T) {
		f := newFixture(t)
		svc := NewFormService(f.forms, f.workspaces, f.policy, nil)
		f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)

		_, err := svc.Create(ctx, viewer.UserID, domain.FormCreate{WorkspaceID: ws.ID, Name: "Survey"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		f.forms.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestFormService_UpdateContent(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	ws := team(ownerID)

	t.Run("invalid field variant", func(t *testing.T) {
		f := newFixture(t)
		svc := NewFormService(f.forms, f.workspaces, f.policy, f.cache)
		form := formIn(ws, ownerID)
		f.forms.On("GetByID", ctx, form.ID).Return(form, nil)
		f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)

		_, err := svc.UpdateContent(ctx, ownerID, form.ID, domain.FormContentUpdate{
			Content: []domain.Field{{ID: "f1", Type: domain.FieldSelect, Label: "Plan"}},
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "content[0]")
		f.forms.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("replaces wholesale and drops cached analytics", func(t *testing.T) {
		f := newFixture(t)
		svc := NewFormService(f.forms, f.workspaces, f.policy, f.cache)
		form := formIn(ws, ownerID, domain.Field{ID: "old", Type: domain.FieldText, Label: "Old"})
		form.Theme = domain.Theme{"primary": "#fff"}
		f.forms.On("GetByID", ctx, form.ID).Return(form, nil)
		f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)
		f.forms.On("Update", ctx, form).Return(nil)
		f.cache.On("Invalidate", ctx, form.ID).Return(nil)

		content := []domain.Field{{ID: "f1", Type: domain.FieldEmail, Label: "Email", Required: true}}
		got, err := svc.UpdateContent(ctx, ownerID, form.ID, domain.FormContentUpdate{
			Content:  content,
			Settings: domain.FormSettings{CollectEmails: true},
		})
		require.NoError(t, err)
		assert.Equal(t, content, got.Content)
		assert.Equal(t, domain.Theme{}, got.Theme)
		assert.True(t, got.Settings.CollectEmails)
		f.assertExpectations(t)
	})

	t.Run("missing form", func(t *testing.T) {
		f := newFixture(t)
		svc := NewFormService(f.forms, f.workspaces, f.policy, f.cache)
		id := uuid.New()
		f.forms.On("GetByID", ctx, id).Return(nil, nil)

		_, err := svc.UpdateContent(ctx, ownerID, id, domain.FormContentUpdate{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestFormService_UpdateDetails(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	ws := team(ownerID)
	form := formIn(ws, ownerID)

	f := newFixture(t)
	svc := NewFormService(f.forms, f.workspaces, f.policy, nil)
	f.forms.On("GetByID", ctx, form.ID).Return(form, nil)
	f.workspaces.On("GetByID", ctx, ws.ID).Return(ws, nil)
	f.forms.On("Update", ctx, form).Return(nil)

	published := true
	desc := "Quarterly pulse"
	got, err := svc.UpdateDetails(ctx, ownerID, form.ID, domain.FormDetailsUpdate{IsPublished: &published, Description: &desc})
	require.NoError(t, err)
	assert.True(t, got.IsPublished)
	assert.Equal(t, "Quarterly pulse", got.Description)
	assert.Equal(t, "Feedback", got.Name)
}

func TestFormService_Delete(t *testing.T) {
	ctx := context.Background()
	formID := uuid.New()
	creator := uuid.New()

	f := newFixture(t)
	svc := NewFormService(f.forms, f.workspaces, f.policy, f.cache)
	f.forms.On("Delete", ctx, formID, creator).Return(true, nil)
	f.cache.On("Invalidate", ctx, formID).Return(nil)
	stranger := uuid.New()
	f.forms.On("Delete", ctx, formID, stranger).Return(false, nil)

	require.NoError(t, svc.Delete(ctx, creator, formID))
	assert.ErrorIs(t, svc.Delete(ctx, stranger, formID), domain.ErrFormNotFound)
	f.submissions.AssertNotCalled(t, "ListAll", mock.Anything, mock.Anything)
}

func TestFormService_GetPublic(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	ws := team(ownerID)
	form := formIn(ws, ownerID, domain.Field{ID: "f1", Type: domain.FieldText, Label: "Name"})

	f := newFixture(t)
	svc := NewFormService(f.forms, f.workspaces, f.policy, nil)
	f.forms.On("GetByID", ctx, form.ID).Return(form, nil)
	missing := uuid.New()
	f.forms.On("GetByID", ctx, missing).Return(nil, nil)

	pub, err := svc.GetPublic(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, form.ID, pub.ID)
	assert.Equal(t, form.Content, pub.Content)

	_, err = svc.GetPublic(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrFormNotFound)
	f.workspaces.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
