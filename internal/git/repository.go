package git

import (
	"context"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository wraps a go-git repository alongside a command runner for the
// operations go-git does not cover (push, reset, worktree mutation).
type Repository struct {
	*gogit.Repository
	path   string
	runner *CommandRunner
}

// OpenRepository opens a git repository at the given path
func OpenRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	// The detected repo root may be a parent of the given path
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	root := worktree.Filesystem.Root()

	return &Repository{
		Repository: repo,
		path:       root,
		runner:     NewCommandRunner(root),
	}, nil
}

// Root returns the root directory of the repository
func (r *Repository) Root() string {
	return r.path
}

// Runner returns the command runner bound to this repository's root
func (r *Repository) Runner() *CommandRunner {
	return r.runner
}

// GitDir returns the repository's git directory. In a linked worktree or
// a submodule .git is a file pointing elsewhere, so the directory is
// resolved through git instead of assuming <root>/.git.
func (r *Repository) GitDir(ctx context.Context) (string, error) {
	dir, err := r.runner.Run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", fmt.Errorf("failed to resolve git dir: %w", err)
	}
	return filepath.Clean(dir), nil
}

// HeadSHA returns the SHA of the current HEAD commit
func (r *Repository) HeadSHA() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// ResolveSHA resolves a revision string (branch, tag, SHA prefix) to a full SHA
func (r *Repository) ResolveSHA(revision string) (string, error) {
	hash, err := r.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", revision, err)
	}
	return hash.String(), nil
}
