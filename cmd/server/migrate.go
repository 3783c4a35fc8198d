package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serbe/rugo-sub000/internal/migrate"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	step := func(use, short string, fn func(ctx context.Context, dsn string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := root.load()
				if err != nil {
					return err
				}
				defer func() { _ = log.Sync() }()

				if err := fn(cmd.Context(), cfg.Database.DSN()); err != nil {
					return fmt.Errorf("migrate %s failed: %w", use, err)
				}
				log.Info("migrate " + use + " done")
				return nil
			},
		}
	}

	cmd.AddCommand(
		step("up", "Apply all up migrations", migrate.Up),
		step("down", "Roll back the latest migration", migrate.Down),
		step("status", "Print migration status", migrate.Status),
	)
	return cmd
}
