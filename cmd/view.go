package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/purebundle/internal/domain"
	m "gooze.dev/pkg/purebundle/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View the last run report",
		Long:  "View the per-file results of the last run from the report given by --reports.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			workflow, err := newWorkflow(cmd, domain.ModeCheck)
			if err != nil {
				return err
			}

			reportsPath := m.Path(viper.GetString(reportsFlagName))

			return workflow.View(cmd.Context(), domain.ViewArgs{Reports: reportsPath})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
