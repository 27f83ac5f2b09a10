package mongo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		},
		workspacesCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_slug")},
			{Keys: bson.D{{Key: "members.user_id", Value: 1}}, Options: options.Index().SetName("members_user")},
		},
		formsCollection: {
			{Keys: bson.D{{Key: "workspace_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("workspace_created")},
		},
		submissionsCollection: {
			{Keys: bson.D{{Key: "form_id", Value: 1}, {Key: "submitted_at", Value: -1}}, Options: options.Index().SetName("form_submitted")},
			{
				Keys: bson.D{{Key: "form_id", Value: 1}, {Key: "dedupe_key", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("uniq_form_respondent").
					SetPartialFilterExpression(bson.M{"dedupe_key": bson.M{"$type": "string"}}),
			},
		},
	}

	for coll, models := range specs {
		names, err := db.collection(coll).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
		log.Debug().Str("collection", coll).Strs("indexes", names).Msg("Indexes ensured")
	}

	return nil
}
