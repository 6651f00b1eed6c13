// Command thesisctl is the operator CLI for the thesis repository.
package main

import (
	"fmt"
	"os"

	"thesisrepo/internal/config"
	"thesisrepo/internal/database"
	"thesisrepo/internal/middleware"
	"thesisrepo/internal/observability"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "thesisctl",
	Short:         "Operate a thesis repository database",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		observability.UseLogger(middleware.Logger)

		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, statusCmd, recountCmd, promoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDatabase() (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}
