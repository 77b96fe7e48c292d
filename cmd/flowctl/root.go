package main

import (
	"github.com/spf13/cobra"

	"github.com/rgalloway/flowkit/internal/xlog"
)

func newRootCmd(app *AppContext) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "flowctl",
		Short:         "flowctl drives flowkit pipeline documents from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.verbose {
				app.Logger = xlog.New(xlog.Options{Level: "debug", Pretty: true})
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringArrayVar(&flags.plugins, "plugin", nil, "path to a compiled activity plugin (repeatable)")

	cmd.AddCommand(newValidateCmd(flags, app))
	cmd.AddCommand(newRunCmd(flags, app))
	cmd.AddCommand(newPipeCmd(flags, app))
	cmd.AddCommand(newWatchCmd(flags, app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
