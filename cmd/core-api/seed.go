package main

import (
	"qms/core-api/internal/logger"
	"qms/core-api/internal/seed"
	"qms/core-api/internal/store/postgres"

	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the reference statuses and priorities",
		Long:  `Insert the statuses and priorities the ticket workflow relies on. Rows that already exist are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pool, err := initEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			data, err := seed.Defaults()
			if file != "" {
				data, err = seed.LoadFile(file)
			}
			if err != nil {
				return err
			}
			result, err := seed.Apply(cmd.Context(), postgres.NewStore(pool, postgres.Options{}), data)
			if err != nil {
				return err
			}
			logger.Get().Info("reference data seeded",
				"statuses_inserted", result.Statuses,
				"priorities_inserted", result.Priorities,
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file to seed instead of the built-in defaults")
	return cmd
}
