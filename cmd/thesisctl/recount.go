package main

import (
	"fmt"

	"thesisrepo/internal/repository"
	"thesisrepo/internal/service"

	"github.com/spf13/cobra"
)

var recountThesisID uint

var recountCmd = &cobra.Command{
	Use:   "recount",
	Short: "Rebuild bibliography and view counters from citation and view rows",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}

		theses := service.NewThesisService(
			repository.NewThesisRepository(db),
			repository.NewUserRepository(db),
			repository.NewLookupRepository(db),
		)
		n, err := theses.Recount(cmd.Context(), recountThesisID)
		if err != nil {
			return err
		}
		if recountThesisID != 0 && n == 0 {
			return fmt.Errorf("thesis %d not found", recountThesisID)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recounted %d thesis(es)\n", n)
		return nil
	},
}

func init() {
	recountCmd.Flags().UintVar(&recountThesisID, "thesis-id", 0, "Only recount this thesis (default: all)")
}
