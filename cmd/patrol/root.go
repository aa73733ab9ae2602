package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/patrol/internal/app"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	prefsPath  string
	poll       time.Duration
}

func (f *globalFlags) options(cmd *cobra.Command) app.Options {
	return app.Options{
		ConfigPath: f.configPath,
		PrefsPath:  f.prefsPath,
		PollEvery:  f.poll,
		LogOutput:  cmd.ErrOrStderr(),
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "patrol",
		Short: "Monitor and triage traffic violations from the terminal",
		Long: `patrol mirrors the newest page of a remote violation collection, refreshes
it on a fixed interval, and lets an operator filter records and mark them
new, reviewed or resolved.

Run without a subcommand to open the interactive monitor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options(cmd))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/patrol/config.toml)")
	pf.StringVar(&flags.prefsPath, "prefs", "", "preferences file (default ~/.config/patrol/prefs.toml)")
	pf.DurationVar(&flags.poll, "poll", 0, "refresh interval, e.g. 10s (default from config)")

	root.AddCommand(newListCmd(flags))
	root.AddCommand(newSetStatusCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "patrol v%s\n", app.Version)
		},
	}
}
