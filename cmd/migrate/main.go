package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Rrens/opsflow/internal/config"
	"github.com/Rrens/opsflow/internal/repository/mongo"
	"github.com/Rrens/opsflow/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the OpsFlow database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(upCmd(), downCmd(), versionCmd(), indexesCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func withMigrator(fn func(*postgres.Migrator) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("SQL migrations need database.driver=%s, got %q", config.DriverPostgres, cfg.Database.Driver)
	}

	fmt.Printf("Connecting to database at %s:%d...\n", cfg.Database.Postgres.Host, cfg.Database.Postgres.Port)
	mg, err := postgres.NewMigrator(cfg.Database.Postgres.DSN(), cfg.Database.MigrationsPath)
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(mg *postgres.Migrator) error {
				return mg.Up()
			})
		},
	}
}

func downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (one step by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				steps = n
			}
			return withMigrator(func(mg *postgres.Migrator) error {
				if err := mg.Down(steps); err != nil {
					return err
				}
				fmt.Printf("Rolled back %d migration(s)\n", steps)
				return nil
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(mg *postgres.Migrator) error {
				v, dirty, err := mg.Version()
				if err != nil {
					return err
				}
				fmt.Printf("version=%d dirty=%t\n", v, dirty)
				return nil
			})
		},
	}
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			db, err := mongo.NewDB(ctx, cfg.Database.Mongo)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			if err := db.EnsureIndexes(ctx); err != nil {
				return err
			}
			fmt.Println("Indexes ensured")
			return nil
		},
	}
}
