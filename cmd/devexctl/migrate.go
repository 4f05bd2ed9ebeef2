package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/devextech/devex-api/internal/config"
	"github.com/devextech/devex-api/internal/database/postgres"
)

var errNotPostgres = errors.New("migrations only apply to STORE_DRIVER=postgres; mongodb indexes are created at startup")

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPostgres(cmd.Context(), func(ctx context.Context, db *bun.DB) error {
				if err := postgres.Migrate(ctx, db.DB); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the state of every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPostgres(cmd.Context(), func(ctx context.Context, db *bun.DB) error {
				return postgres.MigrationStatus(ctx, db.DB)
			})
		},
	})

	return cmd
}

func withPostgres(ctx context.Context, fn func(ctx context.Context, db *bun.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Store.IsPostgres() {
		return errNotPostgres
	}

	db, err := postgres.Open(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db)
}
