package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	shipiterrors "shipit.dev/shipit/internal/errors"
	"shipit.dev/shipit/internal/output"
	"shipit.dev/shipit/internal/runtime"
)

// newRollbackCmd creates the rollback command
func newRollbackCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Undo the recorded release",
		Long: `Undo the release recorded in the state file. The remote tag is deleted
first, then the local tag, then the branch is hard reset to where it was
before the release. A remote that cannot be reached only produces a
warning, local failures mark the rollback unsuccessful.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Splog.Close()

			st, err := ctx.Pipeline.Status()
			if err != nil {
				return err
			}
			if st == nil {
				return shipiterrors.ErrNoActiveRelease
			}

			ctx.Splog.Warn("rolling back %s discards the release commit and tags", st.TagName())
			if !yes {
				ok, err := confirm(fmt.Sprintf("Roll back %s?", st.TagName()), false)
				if err != nil {
					return err
				}
				if !ok {
					ctx.Splog.Info("aborted")
					return nil
				}
			}

			result, err := ctx.Pipeline.RollbackRun(cmd.Context())
			if err != nil {
				return err
			}

			for _, warning := range result.Warnings {
				ctx.Splog.Warn("%s", warning)
			}
			for _, failure := range result.Errors {
				ctx.Splog.Error("%s", failure)
			}

			if !result.Successful {
				return errors.New("rollback left the repository partially unwound, inspect it before retrying")
			}

			ctx.Splog.Info("%s rolled back %s", output.ColorSuccess("✓"), st.TagName())
			ctx.Splog.Tip("run 'shipit cleanup' to discard the release state")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
