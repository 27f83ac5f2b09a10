package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/opsflow/internal/domain"
)

// FormRepository handles form data access
type FormRepository struct {
	db *DB
}

// NewFormRepository creates a new form repository
func NewFormRepository(db *DB) *FormRepository {
	return &FormRepository{db: db}
}

// Create inserts a new form
func (r *FormRepository) Create(ctx context.Context, form *domain.Form) error {
	if _, err := r.db.collection(formsCollection).InsertOne(ctx, newFormDoc(form)); err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}
	return nil
}

// GetByID retrieves a form by ID
func (r *FormRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Form, error) {
	var doc formDoc
	err := r.db.collection(formsCollection).FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByWorkspace returns the workspace's forms, newest first
func (r *FormRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Form, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.db.collection(formsCollection).Find(ctx, bson.M{"workspace_id": workspaceID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []formDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode forms: %w", err)
	}

	forms := make([]*domain.Form, 0, len(docs))
	for _, d := range docs {
		forms = append(forms, d.toDomain())
	}
	return forms, nil
}

// Update writes the mutable attributes of form
func (r *FormRepository) Update(ctx context.Context, form *domain.Form) error {
	res, err := r.db.collection(formsCollection).UpdateOne(ctx,
		bson.M{"_id": form.ID.String()},
		bson.M{"$set": bson.M{
			"name":         form.Name,
			"description":  form.Description,
			"is_published": form.IsPublished,
			"content":      newFieldDocs(form.Content),
			"theme":        bson.M(form.Theme),
			"settings":     settingsDoc(form.Settings),
			"updated_at":   form.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update form: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrFormNotFound
	}
	return nil
}

// Delete removes the form when creatorID created it
func (r *FormRepository) Delete(ctx context.Context, id, creatorID uuid.UUID) (bool, error) {
	res, err := r.db.collection(formsCollection).DeleteOne(ctx, bson.M{
		"_id":        id.String(),
		"creator_id": creatorID.String(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete form: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// IncrementSubmissions bumps the stored submission counter by one
func (r *FormRepository) IncrementSubmissions(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.collection(formsCollection).UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$inc": bson.M{"submissions_count": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment submissions: %w", err)
	}
	return nil
}
