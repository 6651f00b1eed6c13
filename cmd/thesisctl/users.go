package main

import (
	"fmt"
	"strconv"
	"strings"

	"thesisrepo/internal/models"
	"thesisrepo/internal/repository"
	"thesisrepo/internal/service"

	"github.com/spf13/cobra"
)

var (
	promoteEmail string
	promoteRole  string
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Set the role of an existing user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		roleID, err := parseRole(promoteRole)
		if err != nil {
			return err
		}
		db, err := openDatabase()
		if err != nil {
			return err
		}

		users := service.NewUserService(repository.NewUserRepository(db))
		user, err := users.Promote(cmd.Context(), promoteEmail, roleID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d) now has role %s\n", user.Email, user.ID, roleName(user.RoleID))
		return nil
	},
}

var roleNames = map[string]int{
	"student": models.RoleStudent,
	"advisor": models.RoleAdvisor,
	"admin":   models.RoleAdmin,
}

// parseRole accepts a role name or its numeric id.
func parseRole(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if id, ok := roleNames[s]; ok {
		return id, nil
	}
	if id, err := strconv.Atoi(s); err == nil && models.ValidRole(id) {
		return id, nil
	}
	return 0, fmt.Errorf("unknown role %q (want student, advisor or admin)", s)
}

func roleName(id int) string {
	for name, v := range roleNames {
		if v == id {
			return name
		}
	}
	return strconv.Itoa(id)
}

func init() {
	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "Email of the user to change")
	promoteCmd.Flags().StringVar(&promoteRole, "role", "admin", "student, advisor or admin")
	_ = promoteCmd.MarkFlagRequired("email")
}
