package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/patrol/internal/app"
	"github.com/five82/patrol/internal/violations"
)

func newSetStatusCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <new|reviewed|resolved>",
		Short: "Change the review status of one violation",
		Long: `Send a status change for one violation, then re-read the collection and
print the record as the server now reports it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := violations.ID(strings.TrimSpace(args[0]))
			status, err := violations.ParseStatus(args[1])
			if err != nil {
				return err
			}
			v, err := app.SetStatus(cmd.Context(), global.options(cmd), id, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %s\n", v.ID, v.CameraID, v.PlateLabel(), v.Status)
			return nil
		},
	}
}
