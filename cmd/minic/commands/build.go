package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/minic/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [entries...]",
		Short: "Compile entry files incrementally",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			output, _ := cmd.Flags().GetString("output")

			return c.app.Build(cmd.Context(), args, app.BuildOptions{
				Output: output,
			})
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write the artifact to this path (single entry only)")
	return cmd
}
