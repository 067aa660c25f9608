package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
)

func newSettingsCommand(connect connectFunc) *cobra.Command {
	settings := &cobra.Command{
		Use:   "settings",
		Short: "Show or change library settings",
	}

	settings.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(true)
			if err != nil {
				return err
			}
			defer e.Close()

			current, err := e.deps.Settings.Current(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			values := settingValues(current)
			for _, key := range models.SettingKeys {
				fmt.Fprintf(w, "%s\t%s\n", key, values[key])
			}
			return w.Flush()
		},
	})

	settings.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(true)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.deps.Settings.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return nil
		},
	})
	return settings
}

func settingValues(s models.LibrarySettings) map[string]string {
	return map[string]string{
		models.SettingSiteName:        s.SiteName,
		models.SettingAdminEmail:      s.AdminEmail,
		models.SettingMaxBooksPerUser: strconv.Itoa(s.MaxBooksPerUser),
		models.SettingMaxLoanDays:     strconv.Itoa(s.MaxLoanDays),
		models.SettingItemsPerPage:    strconv.Itoa(s.ItemsPerPage),
		models.SettingFinePerDay:      s.FinePerDay.StringFixed(2),
	}
}
