package git

import (
	"context"
	"fmt"
	"strings"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

// BranchInfo describes the currently checked-out branch
type BranchInfo struct {
	Name     string
	SHA      string
	Upstream string
}

// RemoteInfo describes a configured remote
type RemoteInfo struct {
	Name     string
	FetchURL string
	PushURL  string
}

// ValidationResult collects release-readiness issues rather than failing on
// the first one, so the user sees everything at once.
type ValidationResult struct {
	Valid  bool
	Issues []string
}

// IsClean returns true when the working directory has no uncommitted changes
func (r *Repository) IsClean(ctx context.Context) (bool, error) {
	output, err := r.runner.Run(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to check status: %w", err)
	}
	return output == "", nil
}

// CurrentBranch returns the current branch name, its head SHA, and the
// upstream name when one is configured. Returns ErrNotOnBranch for a
// detached HEAD.
func (r *Repository) CurrentBranch(ctx context.Context) (*BranchInfo, error) {
	name, err := r.runner.Run(ctx, "branch", "--show-current")
	if err != nil {
		return nil, fmt.Errorf("failed to get current branch: %w", err)
	}
	if name == "" {
		return nil, shipiterrors.ErrNotOnBranch
	}

	sha, err := r.HeadSHA()
	if err != nil {
		return nil, err
	}

	info := &BranchInfo{Name: name, SHA: sha}

	// No upstream is not an error
	if upstream, err := r.runner.Run(ctx, "rev-parse", "--abbrev-ref", "@{upstream}"); err == nil {
		info.Upstream = upstream
	}

	return info, nil
}

// Remotes returns all configured remotes, parsed from `git remote -v`
func (r *Repository) Remotes(ctx context.Context) ([]RemoteInfo, error) {
	lines, err := r.runner.RunLines(ctx, "remote", "-v")
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}

	byName := make(map[string]*RemoteInfo)
	var order []string
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		name, url := fields[0], fields[1]
		kind := strings.Trim(fields[2], "()")

		remote, ok := byName[name]
		if !ok {
			remote = &RemoteInfo{Name: name}
			byName[name] = remote
			order = append(order, name)
		}
		switch kind {
		case "fetch":
			remote.FetchURL = url
		case "push":
			remote.PushURL = url
		}
	}

	remotes := make([]RemoteInfo, 0, len(order))
	for _, name := range order {
		remotes = append(remotes, *byName[name])
	}
	return remotes, nil
}

// DefaultRemote returns the first configured remote, preferring "origin"
func (r *Repository) DefaultRemote(ctx context.Context) (string, error) {
	remotes, err := r.Remotes(ctx)
	if err != nil {
		return "", err
	}
	if len(remotes) == 0 {
		return "", shipiterrors.ErrNoRemote
	}
	for _, remote := range remotes {
		if remote.Name == "origin" {
			return remote.Name, nil
		}
	}
	return remotes[0].Name, nil
}

// ValidateReleaseReadiness checks that the repository is in a state where a
// release can be started: clean worktree, at least one remote, on a branch.
func (r *Repository) ValidateReleaseReadiness(ctx context.Context) (*ValidationResult, error) {
	var issues []string

	clean, err := r.IsClean(ctx)
	if err != nil {
		return nil, err
	}
	if !clean {
		issues = append(issues, "working directory has uncommitted changes")
	}

	remotes, err := r.Remotes(ctx)
	if err != nil {
		return nil, err
	}
	if len(remotes) == 0 {
		issues = append(issues, "no git remotes configured")
	}

	if _, err := r.CurrentBranch(ctx); err != nil {
		issues = append(issues, "not on a branch (detached HEAD)")
	}

	return &ValidationResult{
		Valid:  len(issues) == 0,
		Issues: issues,
	}, nil
}
