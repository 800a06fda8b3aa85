package cmd

import (
	"github.com/spf13/cobra"

	"gooze.dev/pkg/purebundle/internal/domain"
)

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "check [paths...]",
		Short:        "Fail when source files are not in their transformed form",
		Long:         checkLongDescription,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, err := newWorkflow(cmd, domain.ModeCheck)
			if err != nil {
				return err
			}

			runArgs := transformArgs(args, domain.ModeCheck)
			runArgs.FailOnChange = true

			_, err = workflow.Transform(cmd.Context(), runArgs)

			return err
		},
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
