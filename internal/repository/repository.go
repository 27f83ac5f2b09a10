// Package repository opens the configured storage backend.
package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/opsflow/internal/config"
	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/repository/mongo"
	"github.com/Rrens/opsflow/internal/repository/postgres"
)

// Store bundles the repositories of one backend
type Store struct {
	Users       domain.UserRepository
	Workspaces  domain.WorkspaceRepository
	Forms       domain.FormRepository
	Submissions domain.SubmissionRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open connects to the backend named by cfg.Driver and prepares its schema
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverMongo, "":
		return openMongo(ctx, cfg)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openMongo(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	db, err := mongo.NewDB(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		_ = db.Close(ctx)
		return nil, err
	}

	return &Store{
		Users:       mongo.NewUserRepository(db),
		Workspaces:  mongo.NewWorkspaceRepository(db),
		Forms:       mongo.NewFormRepository(db),
		Submissions: mongo.NewSubmissionRepository(db),
		ping:        db.Ping,
		close:       db.Close,
	}, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.Postgres.DSN(), cfg.MigrationsPath); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info().Str("source", cfg.MigrationsPath).Msg("Migrations applied")
	}

	db, err := postgres.NewDB(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}

	return &Store{
		Users:       postgres.NewUserRepository(db),
		Workspaces:  postgres.NewWorkspaceRepository(db),
		Forms:       postgres.NewFormRepository(db),
		Submissions: postgres.NewSubmissionRepository(db),
		ping:        db.Ping,
		close: func(context.Context) error {
			db.Close()
			return nil
		},
	}, nil
}

// Ping checks the backend is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend connection
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}
