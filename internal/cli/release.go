package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/output"
	"shipit.dev/shipit/internal/release"
	"shipit.dev/shipit/internal/runtime"
	"shipit.dev/shipit/internal/version"
)

// newReleaseCmd creates the release command
func newReleaseCmd() *cobra.Command {
	var (
		bumpName    string
		exact       string
		remote      string
		skipPush    bool
		skipPublish bool
		yes         bool
	)

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Run a release: bump, commit, tag, push, publish",
		Long: `Run a full release. The version is bumped from the latest release tag,
the changes are committed and tagged, commits and tags are pushed, nested
modules are tagged in dependency order, and a forge release is created.
Progress is persisted after every phase so a failed release can be resumed
with 'shipit resume' or undone with 'shipit rollback'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Splog.Close()

			opts := release.RunOptions{
				Exact:       exact,
				Remote:      remote,
				SkipPush:    skipPush,
				SkipPublish: skipPublish,
			}
			if exact == "" {
				bump, err := version.ParseBump(bumpName)
				if err != nil {
					return err
				}
				opts.Bump = bump
			}

			plan, err := ctx.Pipeline.Plan(cmd.Context(), opts)
			if err != nil {
				return err
			}

			current := "none"
			if plan.Current != nil {
				current = version.TagName(plan.Current)
			}
			ctx.Splog.Info("releasing %s (current %s) to %s",
				output.ColorVersion(plan.TagName), current, plan.Remote)

			if !yes {
				ok, err := confirm(fmt.Sprintf("Release %s?", plan.TagName), true)
				if err != nil {
					return err
				}
				if !ok {
					ctx.Splog.Info("aborted")
					return nil
				}
			}

			st, err := ctx.Pipeline.Run(cmd.Context(), opts)
			if err != nil {
				if st != nil {
					ctx.Splog.Error("release %s failed in the %s phase: %v", st.TagName(), st.FailedPhase, err)
					ctx.Splog.Tip("fix the problem and run 'shipit resume', or undo with 'shipit rollback'")
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

	cmd.Flags().StringVarP(&bumpName, "bump", "b", "patch", "Version bump: patch, minor, or major")
	cmd.Flags().StringVar(&exact, "version", "", "Release an exact version instead of bumping")
	cmd.Flags().StringVar(&remote, "remote", "", "Remote to push to (default from .shipit.yaml or origin)")
	cmd.Flags().BoolVar(&skipPush, "no-push", false, "Commit and tag locally without pushing")
	cmd.Flags().BoolVar(&skipPublish, "no-publish", false, "Skip module tags and the forge release")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
