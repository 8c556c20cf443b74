// Package cli wires the shipit commands together.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shipit",
		Short: "Shipit automates releases for Go module workspaces",
		Long: `Shipit automates releases for Go module workspaces: it bumps the version,
commits, tags, pushes, tags nested modules in dependency order, and creates
the forge release. Interrupted releases can be resumed or rolled back.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newReleaseCmd())
	rootCmd.AddCommand(newRollbackCmd())
	rootCmd.AddCommand(newResumeCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newCleanupCmd())

	return rootCmd
}
