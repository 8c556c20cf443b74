package cli

import (
	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/output"
	"shipit.dev/shipit/internal/runtime"
	"shipit.dev/shipit/internal/state"
)

// newStatusCmd creates the status command
func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the repository and any release in flight",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Splog.Close()

			stats, err := ctx.Manager.CollectStats(cmd.Context())
			if err != nil {
				return err
			}

			branch := stats.Branch
			if branch == "" {
				branch = output.ColorWarning("detached HEAD")
			}
			ctx.Splog.Info("repository  %s", stats.Root)
			ctx.Splog.Info("branch      %s (%s)", branch, stats.HeadSHA[:12])
			if stats.Clean {
				ctx.Splog.Info("worktree    %s", output.ColorSuccess("clean"))
			} else {
				ctx.Splog.Info("worktree    %s", output.ColorWarning("dirty"))
			}
			if stats.LatestTag != "" {
				ctx.Splog.Info("latest tag  %s (%d tags)", output.ColorVersion(stats.LatestTag), stats.TagCount)
			} else {
				ctx.Splog.Info("latest tag  %s", output.ColorDim("none"))
			}
			if stats.DefaultRemote != "" {
				ctx.Splog.Info("remote      %s", stats.DefaultRemote)
			}
			ctx.Splog.Info("modules     %d", len(ctx.Workspace.Modules))

			st, err := ctx.Pipeline.Status()
			if err != nil {
				return err
			}
			if st == nil {
				ctx.Splog.Newline()
				ctx.Splog.Info("no release in flight")
				return nil
			}

			ctx.Splog.Newline()
			ctx.Splog.Info("release     %s (%s)", output.ColorVersion(st.TagName()), st.ID)
			ctx.Splog.Info("phase       %s", phaseLabel(st))
			if st.Failure != "" {
				ctx.Splog.Error("failure: %s", st.Failure)
				ctx.Splog.Tip("run 'shipit resume' to retry the %s phase or 'shipit rollback' to undo", st.ResumePhase())
			}
			if st.Recovered {
				ctx.Splog.Warn("state was recovered from backup")
			}
			if st.Git.CommitSHA != "" {
				ctx.Splog.Info("commit      %s", st.Git.CommitSHA[:12])
			}
			if st.Git.TagName != "" {
				pushed := "local only"
				if st.Git.Pushed {
					pushed = "pushed"
				}
				ctx.Splog.Info("tag         %s (%s)", st.Git.TagName, pushed)
			}
			for _, tag := range st.Publish.TaggedModules {
				ctx.Splog.Info("module tag  %s", tag)
			}
			if st.Publish.ReleaseURL != "" {
				ctx.Splog.Info("published   %s", st.Publish.ReleaseURL)
			}
			return nil
		},
	}

	return cmd
}

func phaseLabel(st *state.ReleaseState) string {
	switch st.Phase {
	case state.PhaseDone:
		return output.ColorSuccess(string(st.Phase))
	case state.PhaseFailed:
		return output.ColorFailure(string(st.Phase))
	case state.PhaseRollingBack, state.PhaseRolledBack:
		return output.ColorWarning(string(st.Phase))
	}
	return string(st.Phase)
}
