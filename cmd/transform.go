package cmd

import (
	"github.com/spf13/cobra"
)

// transformCmd represents the transform command.
var transformCmd = newTransformCmd()

func newTransformCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "transform [paths...]",
		Short:        "Run the rewrite pipeline over source files",
		Long:         transformLongDescription,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := configuredMode()
			if err != nil {
				return err
			}

			workflow, err := newWorkflow(cmd, mode)
			if err != nil {
				return err
			}

			_, err = workflow.Transform(cmd.Context(), transformArgs(args, mode))

			return err
		},
	}
}

func init() {
	rootCmd.AddCommand(transformCmd)
}
