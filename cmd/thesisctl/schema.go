package main

import (
	"fmt"

	"thesisrepo/internal/database"

	"github.com/spf13/cobra"
)

var forceMigrate bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every managed table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		if err := database.ApplySchema(cmd.Context(), db, cfg.Env, forceMigrate); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List managed tables by presence",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		status, err := database.GetSchemaStatus(cmd.Context(), db)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, table := range status.Present {
			fmt.Fprintf(out, "present  %s\n", table)
		}
		for _, table := range status.Missing {
			fmt.Fprintf(out, "missing  %s\n", table)
		}
		if len(status.Missing) > 0 {
			return fmt.Errorf("%d table(s) missing, run thesisctl migrate", len(status.Missing))
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&forceMigrate, "force", false, "Allow migrating a production database")
}
