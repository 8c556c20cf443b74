package cli

import (
	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/output"
	"shipit.dev/shipit/internal/release"
	"shipit.dev/shipit/internal/runtime"
	"shipit.dev/shipit/internal/version"
)

// newPreviewCmd creates the preview command
func newPreviewCmd() *cobra.Command {
	var (
		bumpName string
		exact    string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show what a release would do without touching anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Splog.Close()

			opts := release.RunOptions{Exact: exact}
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
			ctx.Splog.Info("current     %s", current)
			ctx.Splog.Info("next        %s", output.ColorVersion(plan.TagName))
			ctx.Splog.Info("remote      %s", plan.Remote)
			ctx.Splog.Info("commit      %s", ctx.Config.CommitMessageFor(plan.Next.String()))

			ctx.Splog.Newline()
			ctx.Splog.Info("modules in publish order:")
			for _, mod := range plan.Modules {
				ctx.Splog.Info("  %s", output.ColorModule(mod.Path))
			}
			if len(plan.ModuleTags) > 0 {
				ctx.Splog.Newline()
				ctx.Splog.Info("module tags:")
				for _, tag := range plan.ModuleTags {
					ctx.Splog.Info("  %s", tag)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&bumpName, "bump", "b", "patch", "Version bump: patch, minor, or major")
	cmd.Flags().StringVar(&exact, "version", "", "Preview an exact version instead of bumping")

	return cmd
}
