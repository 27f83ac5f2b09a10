package mongo

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

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
	if _, err := r.db.collection(submissionsCollection).InsertOne(ctx, newSubmissionDoc(submission)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateSubmission
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// ExistsForRespondent reports whether a keyed submission already exists
func (r *SubmissionRepository) ExistsForRespondent(ctx context.Context, formID uuid.UUID, dedupeKey string) (bool, error) {
	n, err := r.db.collection(submissionsCollection).CountDocuments(ctx,
		bson.M{"form_id": formID.String(), "dedupe_key": dedupeKey},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check submission: %w", err)
	}
	return n > 0, nil
}

func listFilter(formID uuid.UUID, search string) bson.M {
	filter := bson.M{"form_id": formID.String()}
	if search != "" {
		filter["respondent_email"] = primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	}
	return filter
}

// List returns one page of submissions, newest first
func (r *SubmissionRepository) List(ctx context.Context, formID uuid.UUID, filter domain.SubmissionFilter) ([]*domain.Submission, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
		SetSkip(int64(filter.Offset())).
		SetLimit(int64(filter.Limit))

	return r.find(ctx, listFilter(formID, filter.Search), opts)
}

// Count returns the number of submissions matching search
func (r *SubmissionRepository) Count(ctx context.Context, formID uuid.UUID, search string) (int64, error) {
	n, err := r.db.collection(submissionsCollection).CountDocuments(ctx, listFilter(formID, search))
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return n, nil
}

// ListAll returns every submission for the form, oldest first
func (r *SubmissionRepository) ListAll(ctx context.Context, formID uuid.UUID) ([]*domain.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})
	return r.find(ctx, bson.M{"form_id": formID.String()}, opts)
}

// Recent returns up to limit submissions, newest first
func (r *SubmissionRepository) Recent(ctx context.Context, formID uuid.UUID, limit int) ([]*domain.Submission, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"form_id": formID.String()}, opts)
}

func (r *SubmissionRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Submission, error) {
	cursor, err := r.db.collection(submissionsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []submissionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode submissions: %w", err)
	}

	subs := make([]*domain.Submission, 0, len(docs))
	for _, d := range docs {
		subs = append(subs, d.toDomain())
	}
	return subs, nil
}
