package auth

import (
	"errors"
	"fmt"

	"github.com/crucial707/vigil/cmd/cli/client"
	"github.com/crucial707/vigil/cmd/cli/config"
	"github.com/crucial707/vigil/cmd/cli/output"
	"github.com/crucial707/vigil/internal/models"
	"github.com/spf13/cobra"
)

// InitAuth registers login, logout, whoami and passwd on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), logoutCmd(), whoamiCmd(), passwdCmd())
}

// loginCmd logs a user in and stores the bearer token locally.
func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Vigil API",
		Long:  "Authenticate with the Vigil API and store a bearer token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			var resp struct {
				AccessToken string      `json:"access_token"`
				User        models.User `json:"user"`
			}
			err := client.Anonymous().Post(cmd.Context(), "/auth/login",
				map[string]string{"email": email, "password": password}, &resp)
			if err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if resp.AccessToken == "" {
				return errors.New("login succeeded but no token returned")
			}
			if err := config.SaveToken(resp.AccessToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s).\n", resp.User.Name, resp.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.ClearToken()
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "No user logged in.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var u models.User
			if err := c.Get(cmd.Context(), "/auth/me", nil, &u); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), u)
			}
			output.RenderTable(cmd.OutOrStdout(),
				[]string{"ID", "Name", "Email", "Role", "Last Login"},
				[][]interface{}{{u.ID, u.Name, u.Email, u.Role, output.Time(u.LastLogin)}})
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output raw JSON")
	return cmd
}

func passwdCmd() *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			body := map[string]string{
				"current_password": current,
				"new_password":     next,
				"confirm_password": next,
			}
			if err := c.Put(cmd.Context(), "/auth/change-password", body, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password")
	cmd.Flags().StringVar(&next, "new", "", "New password")
	cmd.MarkFlagRequired("current")
	cmd.MarkFlagRequired("new")
	return cmd
}
