package main

import (
	"qms/core-api/internal/logger"
	"qms/core-api/internal/migrations"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pool, err := initEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			version, err := migrations.Down(cmd.Context(), pool, steps)
			if err != nil {
				return err
			}
			logger.Get().Info("migrations rolled back", "steps", steps, "version", version)
			return nil
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Run all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, pool, err := initEnv(cmd.Context())
				if err != nil {
					return err
				}
				defer pool.Close()

				version, err := migrations.Up(cmd.Context(), pool)
				if err != nil {
					return err
				}
				logger.Get().Info("migrations completed", "version", version)
				return nil
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, pool, err := initEnv(cmd.Context())
				if err != nil {
					return err
				}
				defer pool.Close()

				version, err := migrations.Status(cmd.Context(), pool)
				if err != nil {
					return err
				}
				logger.Get().Info("current schema version", "version", version)
				return nil
			},
		},
	)
	return cmd
}
