package foodgramctl

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

var adminUser types.RegisterRequest

// createAdminCmd registers an account with the admin role. Admins may edit
// and delete any recipe.
var createAdminCmd = &cobra.Command{
	Use:   "createadmin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		for flag, value := range map[string]string{
			"--email":    adminUser.Email,
			"--username": adminUser.Username,
			"--password": adminUser.Password,
		} {
			if strings.TrimSpace(value) == "" {
				return fmt.Errorf("%s is required", flag)
			}
		}
		return withDB(cmd.Context(), func(db *gorm.DB) error {
			users := service.NewUserService(db)
			user, err := users.Register(cmd.Context(), &adminUser)
			if err != nil {
				return err
			}
			if err := users.SetRole(cmd.Context(), user.ID, models.RoleAdmin); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Username, user.ID)
			return nil
		})
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminUser.Email, "email", "", "Admin email address")
	createAdminCmd.Flags().StringVar(&adminUser.Username, "username", "", "Admin username")
	createAdminCmd.Flags().StringVar(&adminUser.Password, "password", "", "Admin password")
	createAdminCmd.Flags().StringVar(&adminUser.FirstName, "first-name", "Admin", "First name")
	createAdminCmd.Flags().StringVar(&adminUser.LastName, "last-name", "User", "Last name")
	rootCmd.AddCommand(createAdminCmd)
}
