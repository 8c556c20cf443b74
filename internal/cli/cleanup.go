package cli

import (
	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/runtime"
)

// newCleanupCmd creates the cleanup command
func newCleanupCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Discard the persisted release state",
		Long: `Discard the persisted release state of a finished or rolled back run.
A release still in flight is refused unless --force is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Splog.Close()

			if err := ctx.Pipeline.Cleanup(force); err != nil {
				return err
			}
			ctx.Splog.Info("release state cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Discard the state even for a release in flight")

	return cmd
}
