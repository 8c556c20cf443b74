package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/output"
	"shipit.dev/shipit/internal/runtime"
	"shipit.dev/shipit/internal/workspace"
)

// newValidateCmd creates the validate command
func newValidateCmd() *cobra.Command {
	var tagName string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check whether the repository is ready to release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Splog.Close()

			validator := workspace.NewValidator(ctx.Manager.Repo(), ctx.Workspace)
			report, err := validator.Validate(cmd.Context(), tagName)
			if err != nil {
				return err
			}

			for _, check := range report.Checks {
				switch {
				case check.Passed:
					ctx.Splog.Info("%s %s: %s", output.ColorSuccess("✓"), check.Name, check.Message)
				case check.Critical:
					ctx.Splog.Error("%s: %s", check.Name, check.Message)
				default:
					ctx.Splog.Warn("%s: %s", check.Name, check.Message)
				}
			}

			if !report.Ready() {
				return errors.New("repository is not ready to release")
			}
			ctx.Splog.Newline()
			ctx.Splog.Info("ready to release")
			return nil
		},
	}

	cmd.Flags().StringVar(&tagName, "tag", "", "Also check that this tag is still free")

	return cmd
}
