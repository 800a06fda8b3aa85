package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "watch [paths...]",
		Short:        "Re-run the pipeline whenever source files change",
		Long:         watchLongDescription,
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return workflow.Watch(ctx, transformArgs(args, mode))
		},
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
