package cli

import (
	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/output"
	"shipit.dev/shipit/internal/release"
	"shipit.dev/shipit/internal/runtime"
)

// newResumeCmd creates the resume command
func newResumeCmd() *cobra.Command {
	var (
		skipPush    bool
		skipPublish bool
	)

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Continue a failed release from where it stopped",
		Long: `Continue a failed release. The run restarts at the phase it failed in,
skipping the steps that already completed: an existing release commit is
not repeated, an existing tag is not recreated, and modules that were
already tagged keep their tags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Splog.Close()

			st, err := ctx.Pipeline.Resume(cmd.Context(), release.RunOptions{
				SkipPush:    skipPush,
				SkipPublish: skipPublish,
			})
			if err != nil {
				if st != nil {
					ctx.Splog.Error("release %s failed again in the %s phase: %v", st.TagName(), st.FailedPhase, err)
				}
				return err
			}

			ctx.Splog.Info("%s released %s", output.ColorSuccess("✓"), output.ColorVersion(st.TagName()))
			if st.Publish.ReleaseURL != "" {
				ctx.Splog.Info("  %s", st.Publish.ReleaseURL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipPush, "no-push", false, "Finish locally without pushing")
	cmd.Flags().BoolVar(&skipPublish, "no-publish", false, "Skip module tags and the forge release")

	return cmd
}
