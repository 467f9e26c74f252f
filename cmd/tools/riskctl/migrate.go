package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lepto-risk-workers/internal/common/database"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the riskanalysis schema in PostgreSQL",
	}

	target := func() (string, string, error) {
		cfg, err := opts.loadConfig()
		if err != nil {
			return "", "", err
		}
		pg := cfg.Database.Postgres
		return pg.GetURL(), pg.MigrationsPath, nil
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, path, err := target()
			if err != nil {
				return err
			}
			if err := database.RunMigrations(dbURL, path); err != nil {
				return err
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, path, err := target()
			if err != nil {
				return err
			}
			if err := database.RollbackMigration(dbURL, path, steps); err != nil {
				return err
			}
			fmt.Printf("Rolled back %d migration(s).\n", steps)
			return nil
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, path, err := target()
			if err != nil {
				return err
			}
			version, dirty, err := database.MigrationStatus(dbURL, path)
			if err != nil {
				return err
			}
			fmt.Printf("version=%d dirty=%t\n", version, dirty)
			return nil
		},
	}

	cmd.AddCommand(upCmd, downCmd, statusCmd)
	return cmd
}
