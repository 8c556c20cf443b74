// Package runtime provides a context type that holds the release pipeline
// and logger for use throughout the application. This avoids passing
// multiple parameters through every command.
package runtime

import (
	"context"
	"fmt"
	"path/filepath"

	"shipit.dev/shipit/internal/config"
	"shipit.dev/shipit/internal/git"
	"shipit.dev/shipit/internal/output"
	"shipit.dev/shipit/internal/publish"
	"shipit.dev/shipit/internal/release"
	"shipit.dev/shipit/internal/state"
	"shipit.dev/shipit/internal/workspace"
)

// Context provides access to the pipeline and output for commands
type Context struct {
	Pipeline  *release.Pipeline
	Manager   *release.Manager
	Workspace *workspace.Workspace
	Config    *config.Config
	Splog     *output.Splog
	RepoRoot  string
}

// GetContext opens the repository at the working directory, discovers its
// workspace, and assembles the pipeline. A missing forge token is not an
// error, the publish phase then skips the forge release.
func GetContext() (*Context, error) {
	splog, err := output.NewSplogWithFile(output.GetLogFilePath())
	if err != nil {
		splog = output.NewSplog()
	}

	repo, err := git.OpenRepository(".")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	cfg, err := config.Load(repo.Root())
	if err != nil {
		return nil, err
	}

	ws, err := workspace.Discover(repo.Root())
	if err != nil {
		return nil, err
	}

	manager := release.NewManager(repo, cfg)

	// .git is a file in linked worktrees and submodules, resolve the
	// real git dir before rooting the state store in it
	gitDir, err := repo.GitDir(context.Background())
	if err != nil {
		gitDir = filepath.Join(repo.Root(), ".git")
	}
	store := state.NewStore(gitDir)

	// Best effort, commands that never publish work without a token
	var forge publish.Forge
	if remote, err := repo.DefaultRemote(context.Background()); err == nil {
		if remotes, err := repo.Remotes(context.Background()); err == nil {
			for _, info := range remotes {
				if info.Name != remote {
					continue
				}
				if client, err := publish.NewGitHubForge(context.Background(), info.FetchURL); err == nil {
					forge = client
				} else {
					splog.Debug("forge client unavailable: %v", err)
				}
			}
		}
	}

	return &Context{
		Pipeline:  release.NewPipeline(manager, store, ws, cfg, forge, splog),
		Manager:   manager,
		Workspace: ws,
		Config:    cfg,
		Splog:     splog,
		RepoRoot:  repo.Root(),
	}, nil
}
