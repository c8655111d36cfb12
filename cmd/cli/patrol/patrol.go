// Package patrol holds the round and shift commands guards use on duty.
package patrol

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/crucial707/vigil/cmd/cli/client"
	"github.com/crucial707/vigil/cmd/cli/output"
	"github.com/crucial707/vigil/internal/models"
	"github.com/spf13/cobra"
)

func InitRounds(rootCmd *cobra.Command) {
	roundsCmd := &cobra.Command{
		Use:   "rounds",
		Short: "Start, finish and review patrol rounds",
	}
	roundsCmd.AddCommand(
		startRoundCmd(),
		closeRoundCmd("finish", "Complete an active round"),
		closeRoundCmd("interrupt", "Interrupt an active round"),
		listRoundsCmd(),
		activeRoundCmd(),
	)
	rootCmd.AddCommand(roundsCmd)
}

func InitShifts(rootCmd *cobra.Command) {
	shiftsCmd := &cobra.Command{
		Use:   "shifts",
		Short: "Start, finish and review shifts",
	}
	shiftsCmd.AddCommand(
		startShiftCmd(),
		finishShiftCmd(),
		listShiftsCmd("list", "/shifts", "List shifts (guards see only their own)"),
		listShiftsCmd("active", "/shifts/active", "List active shifts (supervisors and administrators)"),
		currentShiftCmd(),
	)
	rootCmd.AddCommand(shiftsCmd)
}

// ==========================
// Rounds
// ==========================
func startRoundCmd() *cobra.Command {
	var (
		locations []string
		notes     string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a patrol round",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			body := map[string]interface{}{"visited_locations": locations, "notes": notes}
			var rd models.Round
			if err := c.Post(cmd.Context(), "/rounds", body, &rd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Round %s started.\n", rd.ID)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&locations, "locations", nil, "Planned locations, comma-separated")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	return cmd
}

func closeRoundCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var rd models.Round
			if err := c.Put(cmd.Context(), "/rounds/"+url.PathEscape(args[0])+"/"+action, nil, &rd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Round %s %s.\n", rd.ID, rd.Status)
			return nil
		},
	}
}

func listRoundsCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rounds (guards see only their own)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var list []models.Round
			if err := c.Get(cmd.Context(), "/rounds", map[string]string{"limit": strconv.Itoa(limit)}, &list); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), list)
			}
			renderRounds(cmd, list)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum rows to fetch")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output raw JSON")
	return cmd
}

func activeRoundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show your active round",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var rd models.Round
			if err := c.Get(cmd.Context(), "/rounds/active", nil, &rd); err != nil {
				if isNotFound(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "No active round.")
					return nil
				}
				return err
			}
			renderRounds(cmd, []models.Round{rd})
			return nil
		},
	}
}

func renderRounds(cmd *cobra.Command, list []models.Round) {
	rows := make([][]interface{}, 0, len(list))
	for _, rd := range list {
		rows = append(rows, []interface{}{
			rd.ID, rd.GuardName, output.Time(&rd.StartedAt), output.Time(rd.EndedAt),
			rd.Status, strings.Join(rd.VisitedLocations, ", "), rd.IncidentCount,
		})
	}
	output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Guard", "Started", "Ended", "Status", "Locations", "Incidents"}, rows)
}

// ==========================
// Shifts
// ==========================
func startShiftCmd() *cobra.Command {
	var location, notes string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a shift at a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var s models.Shift
			if err := c.Post(cmd.Context(), "/shifts", map[string]string{"location": location, "notes": notes}, &s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shift %s started at %s.\n", s.ID, s.Location)
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Responsible location")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.MarkFlagRequired("location")
	return cmd
}

func finishShiftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish [id]",
		Short: "Finish an active shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var s models.Shift
			if err := c.Put(cmd.Context(), "/shifts/"+url.PathEscape(args[0])+"/finish", nil, &s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shift %s finished.\n", s.ID)
			return nil
		},
	}
}

func listShiftsCmd(use, path, short string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var list []models.Shift
			if err := c.Get(cmd.Context(), path, nil, &list); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), list)
			}
			renderShifts(cmd, list)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output raw JSON")
	return cmd
}

func currentShiftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show your active shift",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.FromEnv()
			if err != nil {
				return err
			}
			var s models.Shift
			if err := c.Get(cmd.Context(), "/shifts/current", nil, &s); err != nil {
				if isNotFound(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "No active shift.")
					return nil
				}
				return err
			}
			renderShifts(cmd, []models.Shift{s})
			return nil
		},
	}
}

func renderShifts(cmd *cobra.Command, list []models.Shift) {
	rows := make([][]interface{}, 0, len(list))
	for _, s := range list {
		rows = append(rows, []interface{}{s.ID, s.GuardName, s.Location, output.Time(&s.StartedAt), output.Time(s.EndedAt), s.Status})
	}
	output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Guard", "Location", "Started", "Ended", "Status"}, rows)
}

func isNotFound(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
