package occurrences

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/crucial707/vigil/cmd/cli/client"
	"github.com/crucial707/vigil/cmd/cli/output"
	"github.com/crucial707/vigil/internal/models"
	"github.com/spf13/cobra"
)

// ==========================
// Init Occurrences
// ==========================
func InitOccurrences(rootCmd *cobra.Command) {
	occurrencesCmd := &cobra.Command{
		Use:     "occurrences",
		Aliases: []string{"occ"},
		Short:   "Report and review security occurrences",
	}

	occurrencesCmd.AddCommand(
		listOccurrencesCmd(),
		showOccurrenceCmd(),
		createOccurrenceCmd(),
		resolveOccurrenceCmd(),
		photoCmd(),
	)

	rootCmd.AddCommand(occurrencesCmd)
}

// ==========================
// LIST
// ==========================
func listOccurrencesCmd() *cobra.Command {
	var (
		priority string
		limit    int
		offset   int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List occurrences (guards see only their own)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}

			path := "/occurrences"
			if priority != "" {
				path = "/occurrences/priority/" + url.PathEscape(priority)
			}
			query := map[string]string{"limit": strconv.Itoa(limit), "offset": strconv.Itoa(offset)}

			var list []models.Occurrence
			if err := c.Get(cmd.Context(), path, query, &list); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), list)
			}

			rows := make([][]interface{}, 0, len(list))
			for _, o := range list {
				rows = append(rows, []interface{}{o.ID, o.CreatedAt.Local().Format("2006-01-02 15:04"), o.Location, o.Type, o.Priority, o.ReporterName, status(o)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Reported", "Location", "Type", "Priority", "Reporter", "Status"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Only this priority (low, medium, high, critical)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum rows to fetch")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output raw JSON")
	return cmd
}

// ==========================
// SHOW
// ==========================
func showOccurrenceCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one occurrence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var o models.Occurrence
			if err := c.Get(cmd.Context(), "/occurrences/"+url.PathEscape(args[0]), nil, &o); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), o)
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"Field", "Value"}, [][]interface{}{
				{"ID", o.ID},
				{"Location", o.Location},
				{"Type", o.Type},
				{"Priority", o.Priority},
				{"Description", o.Description},
				{"Reporter", o.ReporterName},
				{"Reported", output.Time(&o.CreatedAt)},
				{"Status", status(o)},
				{"Resolved At", output.Time(o.ResolvedAt)},
				{"Notes", o.ResolutionNotes},
				{"Photos", strings.Join(o.Photos, "\n")},
			})
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output raw JSON")
	return cmd
}

// ==========================
// CREATE
// ==========================
func createOccurrenceCmd() *cobra.Command {
	var location, typ, priority, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Report an occurrence",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			body := map[string]string{
				"location":    location,
				"type":        typ,
				"description": description,
			}
			if priority != "" {
				body["priority"] = priority
			}
			var o models.Occurrence
			if err := c.Post(cmd.Context(), "/occurrences", body, &o); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Occurrence %s reported (%s, %s).\n", o.ID, o.Type, o.Priority)
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Where it happened")
	cmd.Flags().StringVar(&typ, "type", "", "One of: "+strings.Join(models.OccurrenceTypes, ", "))
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium, high or critical (default medium)")
	cmd.Flags().StringVar(&description, "description", "", "What happened")
	cmd.MarkFlagRequired("location")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("description")
	return cmd
}

// ==========================
// RESOLVE
// ==========================
func resolveOccurrenceCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "resolve [id]",
		Short: "Mark an occurrence resolved (supervisors and administrators)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var o models.Occurrence
			if err := c.Put(cmd.Context(), "/occurrences/"+url.PathEscape(args[0])+"/resolve", map[string]string{"notes": notes}, &o); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Occurrence %s resolved.\n", o.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Resolution notes")
	return cmd
}

// ==========================
// PHOTO
// ==========================
func photoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "photo [id] [file]",
		Short: "Attach a photo to an occurrence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var resp struct {
				PhotoURL string `json:"photo_url"`
			}
			if err := c.Upload(cmd.Context(), "/occurrences/"+url.PathEscape(args[0])+"/photos", args[1], &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Photo uploaded: %s\n", resp.PhotoURL)
			return nil
		},
	}
}

func status(o models.Occurrence) string {
	if o.Resolved {
		return "resolved"
	}
	return "open"
}
