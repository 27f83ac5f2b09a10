package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/opsflow/internal/domain"
)

// WorkspaceRepository handles workspace data access. Membership lives on both
// the workspace document and the user document; both sides change in one transaction.
type WorkspaceRepository struct {
	db *DB
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db *DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// CreateWithOwner inserts the workspace and pushes the owner's back-reference
func (r *WorkspaceRepository) CreateWithOwner(ctx context.Context, workspace *domain.Workspace) error {
	return r.db.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.db.collection(workspacesCollection).InsertOne(sc, newWorkspaceDoc(workspace)); err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}

		ref := userWorkspaceDoc{WorkspaceID: workspace.ID.String(), Role: string(domain.RoleAdmin)}
		res, err := r.db.collection(usersCollection).UpdateOne(sc,
			bson.M{"_id": workspace.OwnerID.String()},
			bson.M{
				"$push": bson.M{"workspaces": ref},
				"$set":  bson.M{"updated_at": workspace.CreatedAt},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to link owner: %w", err)
		}
		if res.MatchedCount == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}

// GetByID retrieves a workspace by ID
func (r *WorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	var doc workspaceDoc
	err := r.db.collection(workspacesCollection).FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByMember returns workspaces that list userID as a member, newest first
func (r *WorkspaceRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.Workspace, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.db.collection(workspacesCollection).Find(ctx, bson.M{"members.user_id": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []workspaceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode workspaces: %w", err)
	}

	workspaces := make([]*domain.Workspace, 0, len(docs))
	for _, d := range docs {
		workspaces = append(workspaces, d.toDomain())
	}
	return workspaces, nil
}

// AddMember pushes the membership onto the workspace and the user
func (r *WorkspaceRepository) AddMember(ctx context.Context, workspaceID uuid.UUID, member domain.WorkspaceMember) error {
	wsID := workspaceID.String()
	userID := member.UserID.String()

	return r.db.inTransaction(ctx, func(sc mongo.SessionContext) error {
		// the filter only matches while the user is absent, so concurrent adds cannot duplicate
		res, err := r.db.collection(workspacesCollection).UpdateOne(sc,
			bson.M{
				"_id":             wsID,
				"owner_id":        bson.M{"$ne": userID},
				"members.user_id": bson.M{"$ne": userID},
			},
			bson.M{
				"$push": bson.M{"members": newMemberDoc(member)},
				"$set":  bson.M{"updated_at": time.Now()},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		if res.MatchedCount == 0 {
			n, err := r.db.collection(workspacesCollection).CountDocuments(sc, bson.M{"_id": wsID})
			if err != nil {
				return fmt.Errorf("failed to check workspace: %w", err)
			}
			if n == 0 {
				return domain.ErrNotFound
			}
			return domain.ErrAlreadyMember
		}

		res, err = r.db.collection(usersCollection).UpdateOne(sc,
			bson.M{"_id": userID},
			bson.M{"$push": bson.M{"workspaces": userWorkspaceDoc{WorkspaceID: wsID, Role: string(member.Role)}}},
		)
		if err != nil {
			return fmt.Errorf("failed to link member: %w", err)
		}
		if res.MatchedCount == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}

// RemoveMember pulls the membership from the workspace and the user
func (r *WorkspaceRepository) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	wsID := workspaceID.String()
	uid := userID.String()

	return r.db.inTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.db.collection(workspacesCollection).UpdateOne(sc,
			bson.M{"_id": wsID, "members.user_id": uid},
			bson.M{
				"$pull": bson.M{"members": bson.M{"user_id": uid}},
				"$set":  bson.M{"updated_at": time.Now()},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		if res.MatchedCount == 0 {
			return domain.ErrMemberNotFound
		}

		if _, err := r.db.collection(usersCollection).UpdateOne(sc,
			bson.M{"_id": uid},
			bson.M{"$pull": bson.M{"workspaces": bson.M{"workspace_id": wsID}}},
		); err != nil {
			return fmt.Errorf("failed to unlink member: %w", err)
		}
		return nil
	})
}
