package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/five82/patrol/internal/app"
	"github.com/five82/patrol/internal/view"
	"github.com/five82/patrol/internal/violations"
)

type listFlags struct {
	search string
	status string
	camera string
	json   bool
}

func newListCmd(global *globalFlags) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch the newest violations once and print them",
		Long: `Fetch the newest page of violations, apply the given filters, and print the
matching records followed by statistics over the whole page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := view.ParseStatusFilter(flags.status)
			if err != nil {
				return err
			}
			criteria := view.Criteria{
				Search: flags.search,
				Status: status,
				Camera: strings.TrimSpace(flags.camera),
			}
			if criteria.Camera == "" {
				criteria.Camera = view.CameraAll
			}

			result, err := app.List(cmd.Context(), global.options(cmd), criteria)
			if err != nil {
				return err
			}
			if flags.json {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			writeTable(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.search, "search", "s", "", "case-insensitive substring of plate or camera")
	cmd.Flags().StringVar(&flags.status, "status", "all", "all, new, reviewed or resolved")
	cmd.Flags().StringVar(&flags.camera, "camera", "all", "exact camera id, or all")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print JSON instead of a table")
	return cmd
}

type listOutput struct {
	Stats      view.Stats             `json:"stats"`
	Violations []violations.Violation `json:"violations"`
}

func writeJSON(w io.Writer, result view.DerivedView) error {
	out := listOutput{Stats: result.Stats, Violations: result.Filtered}
	if out.Violations == nil {
		out.Violations = []violations.Violation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeTable(w io.Writer, result view.DerivedView) {
	if len(result.Filtered) == 0 {
		fmt.Fprintln(w, "No violations")
	} else {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "TIME", "CAMERA", "PLATE", "CONF", "STATUS")
		for _, v := range result.Filtered {
			t.Row(
				string(v.ID),
				v.Timestamp.Local().Format(time.DateTime),
				v.CameraID,
				v.PlateLabel(),
				v.ConfidenceLabel(),
				string(v.Status),
			)
		}
		fmt.Fprintln(w, t.String())
	}
	s := result.Stats
	fmt.Fprintf(w, "Total: %d  New: %d  No plate: %d  Detected: %d\n", s.Total, s.New, s.NoPlate, s.Detected)
}
