package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgalloway/flowkit/internal/flowconfig"
)

func newValidateCmd(root *rootFlags, app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document.yaml>",
		Short: "Parse and validate a pipeline document without resolving or running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := flowconfig.Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d activities, valid\n", doc.Name, len(doc.Activities))
			return nil
		},
	}
	return cmd
}
