package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
}

func newRootCmd(app *AppContext) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "flowctl",
		Short:         "flowctl runs declarative dataflow pipes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newRunCmd(app, flags))
	cmd.AddCommand(newValidateCmd(app, flags))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newStatusCmd())

	return cmd
}
