package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/migrations"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/bootstrap"
)

func newMigrateCommand(connect connectFunc) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := bootstrap.RunMigrations(cmd.Context(), e.cfg, e.database, e.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(false)
			if err != nil {
				return err
			}
			defer e.Close()

			applied, err := migrations.NewMigrator(e.database.Pool, e.logger).Applied(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tAPPLIED AT")
			for _, m := range applied {
				fmt.Fprintf(w, "%s\t%s\n", m.Version, m.AppliedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	})
	return migrate
}

func newSeedCommand(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default categories and the bootstrap administrator",
		Long:  "Creates the default categories and, when admin.password is configured, the bootstrap administrator. Existing rows are left alone.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(true)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := bootstrap.SeedDefaults(cmd.Context(), e.cfg, e.deps.Repos, e.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Seed complete")
			return nil
		},
	}
}

func newPruneSessionsCommand(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-sessions",
		Short: "Delete expired and revoked sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(true)
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := e.deps.Auth.PruneSessions(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d sessions\n", n)
			return nil
		},
	}
}
