package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/database"
	"github.com/ManuelReschke/CleanCity/internal/pkg/env"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts and API keys",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			env.SetupEnvFile()
			database.SetupDatabase()
		},
	}
	cmd.AddCommand(userCreateCmd(), userAPIKeyCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	var admin bool

	cmd := &cobra.Command{
		Use:   "create [name] [email]",
		Short: "Create a citizen or admin account and print its API key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := models.ROLE_CITIZEN
			if admin {
				role = models.ROLE_ADMIN
			}
			user, err := models.CreateUser(args[0], args[1], role)
			if err != nil {
				return err
			}
			if err := database.GetDB().Create(user).Error; err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			key, err := issueKey(user.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d (%s) created\napi key: %s\n", user.ID, role, key)
			return nil
		},
	}

	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	return cmd
}

func userAPIKeyCmd() *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "apikey [user-id]",
		Short: "Issue a new API key for a user, replacing the old one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var userID uint
			if _, err := fmt.Sscan(args[0], &userID); err != nil || userID == 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			if revoke {
				settings, err := models.GetOrCreateUserSettings(database.GetDB(), userID)
				if err != nil {
					return err
				}
				settings.RevokeAPIKey()
				if err := database.GetDB().Save(settings).Error; err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "api key of user %d revoked\n", userID)
				return nil
			}
			key, err := issueKey(userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "api key: %s\n", key)
			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "revoke the current key instead of issuing one")
	return cmd
}

func issueKey(userID uint) (string, error) {
	db := database.GetDB()
	if err := db.First(&models.User{}, userID).Error; err != nil {
		return "", fmt.Errorf("user %d: %w", userID, err)
	}
	settings, err := models.GetOrCreateUserSettings(db, userID)
	if err != nil {
		return "", err
	}
	key, err := settings.IssueAPIKey()
	if err != nil {
		return "", err
	}
	if err := db.Save(settings).Error; err != nil {
		return "", fmt.Errorf("failed to store api key: %w", err)
	}
	return key, nil
}
