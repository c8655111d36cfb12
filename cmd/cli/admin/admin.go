// Package admin holds the supervisor and administrator commands.
package admin

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/crucial707/vigil/cmd/cli/client"
	"github.com/crucial707/vigil/cmd/cli/output"
	"github.com/crucial707/vigil/internal/models"
	"github.com/spf13/cobra"
)

func InitAdmin(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts (administrators)",
	}
	usersCmd.AddCommand(
		listUsersCmd(),
		registerUserCmd(),
		setStatusCmd("activate", true),
		setStatusCmd("deactivate", false),
	)

	locationsCmd := &cobra.Command{
		Use:   "locations",
		Short: "Manage patrol locations",
	}
	locationsCmd.AddCommand(listLocationsCmd(), createLocationCmd())

	rootCmd.AddCommand(usersCmd, locationsCmd, auditCmd(), statsCmd())
}

// ==========================
// Users
// ==========================
func listUsersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var users []models.User
			if err := c.Get(cmd.Context(), "/users", nil, &users); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), users)
			}
			rows := make([][]interface{}, 0, len(users))
			for _, u := range users {
				rows = append(rows, []interface{}{u.ID, u.Name, u.Email, u.Role, u.Active, output.Time(u.LastLogin)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Email", "Role", "Active", "Last Login"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output raw JSON")
	return cmd
}

func registerUserCmd() *cobra.Command {
	var name, email, password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			body := map[string]string{"name": name, "email": email, "password": password, "role": role}
			var u models.User
			if err := c.Post(cmd.Context(), "/auth/register", body, &u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s registered as %s (id %s).\n", u.Email, u.Role, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().StringVar(&role, "role", models.RoleGuard, "guard, supervisor or administrator")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func setStatusCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: fmt.Sprintf("Set a user's active flag to %t", active),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var u models.User
			if err := c.Put(cmd.Context(), "/users/"+url.PathEscape(args[0])+"/status", map[string]bool{"active": active}, &u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s active=%t.\n", u.Email, u.Active)
			return nil
		},
	}
}

// ==========================
// Locations
// ==========================
func listLocationsCmd() *cobra.Command {
	var all, asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var query map[string]string
			if all {
				query = map[string]string{"all": "true"}
			}
			var list []models.Location
			if err := c.Get(cmd.Context(), "/locations", query, &list); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), list)
			}
			rows := make([][]interface{}, 0, len(list))
			for _, l := range list {
				rows = append(rows, []interface{}{l.ID, l.Name, l.Description, l.CameraIP, l.Active})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Description", "Camera", "Active"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive locations")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output raw JSON")
	return cmd
}

func createLocationCmd() *cobra.Command {
	var name, description, cameraIP, cameraURL string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a location (administrators)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			body := map[string]string{"name": name, "description": description, "camera_ip": cameraIP, "camera_url": cameraURL}
			var l models.Location
			if err := c.Post(cmd.Context(), "/locations", body, &l); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Location %s created (id %s).\n", l.Name, l.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Location name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&cameraIP, "camera-ip", "", "Camera IP address")
	cmd.Flags().StringVar(&cameraURL, "camera-url", "", "Camera stream URL")
	cmd.MarkFlagRequired("name")
	return cmd
}

// ==========================
// Audit
// ==========================
func auditCmd() *cobra.Command {
	var (
		limit  int
		offset int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit log (administrators)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var list []models.AuditEntry
			query := map[string]string{"limit": strconv.Itoa(limit), "offset": strconv.Itoa(offset)}
			if err := c.Get(cmd.Context(), "/audit-logs", query, &list); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), list)
			}
			rows := make([][]interface{}, 0, len(list))
			for _, e := range list {
				rows = append(rows, []interface{}{output.Time(&e.CreatedAt), e.UserName, e.Action, e.Resource, e.Details, e.IPAddress})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"When", "User", "Action", "Resource", "Details", "IP"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum rows to fetch")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output raw JSON")
	return cmd
}

// ==========================
// Stats
// ==========================
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics for today",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			// Guards and supervisors get different shapes.
			var stats map[string]interface{}
			if err := c.Get(cmd.Context(), "/dashboard/stats", nil, &stats); err != nil {
				return err
			}
			keys := make([]string, 0, len(stats))
			for k := range stats {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			rows := make([][]interface{}, 0, len(keys))
			for _, k := range keys {
				rows = append(rows, []interface{}{k, stats[k]})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"Metric", "Value"}, rows)
			return nil
		},
	}
}
