package main

import (
	"fmt"

	"github.com/spf13/cobra"

	config "github.com/seldo/newww/configs"
	"github.com/seldo/newww/internal/infrastructure/db"
)

func newMigrateCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the accounts schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "migrations directory (defaults to DB_MIGRATIONS_PATH)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(path, func(d *db.Database, dir string) error {
				if err := d.MigrateUp(dir); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(path, func(d *db.Database, dir string) error {
				if err := d.MigrateDown(dir, steps); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(path, func(d *db.Database, dir string) error {
				v, dirty, err := d.Version(dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
				return nil
			})
		},
	})

	return cmd
}

func withDatabase(path string, fn func(d *db.Database, dir string) error) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.MigrationsPath
	}
	database, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(database, path)
}
