package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/bootstrap"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/config"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/db"
)

// env is what every subcommand works with
type env struct {
	cfg      *config.Config
	logger   zerolog.Logger
	database *db.PostgresDB
	deps     *bootstrap.Dependencies
}

func (e *env) Close() {
	if e.database != nil {
		e.database.Close()
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "booklogctl",
		Short:         "Operator tasks for the BookLog library service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", bootstrap.DefaultConfigPath, "path to the YAML config file")

	// connect loads the config and opens the database; withServices also
	// builds the service layer.
	connect := func(withServices bool) (*env, error) {
		cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
		if err != nil {
			return nil, err
		}
		database, err := bootstrap.OpenDatabase(cfg, lgr)
		if err != nil {
			return nil, err
		}
		e := &env{cfg: cfg, logger: lgr, database: database}
		if withServices {
			if e.deps, err = bootstrap.BuildServices(cfg, database, lgr); err != nil {
				e.Close()
				return nil, err
			}
		}
		return e, nil
	}

	root.AddCommand(
		newMigrateCommand(connect),
		newSeedCommand(connect),
		newCreateAdminCommand(connect),
		newSettingsCommand(connect),
		newPruneSessionsCommand(connect),
	)
	return root
}

type connectFunc func(withServices bool) (*env, error)
