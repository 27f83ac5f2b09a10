// Package mongo stores principals, workspaces, forms and submissions in MongoDB.
// Multi-document writes use transactions, so the server must run as a replica set.
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Rrens/opsflow/internal/config"
)

// Collection names
const (
	usersCollection       = "users"
	workspacesCollection  = "workspaces"
	formsCollection       = "forms"
	submissionsCollection = "submissions"
)

// DB wraps the MongoDB client and the application database
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewDB connects to MongoDB and verifies the connection
func NewDB(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")

	return &DB{
		Client:   client,
		Database: client.Database(cfg.Database),
	}, nil
}

// Close disconnects the client
func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}

// Ping checks the primary is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

func (db *DB) collection(name string) *mongo.Collection {
	return db.Database.Collection(name)
}

// inTransaction runs fn inside a session transaction
func (db *DB) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := db.Client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
