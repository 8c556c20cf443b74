package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

// DefaultPushTimeout bounds push operations so a misconfigured credential
// helper cannot hang automation forever.
const DefaultPushTimeout = 5 * time.Minute

// lsRemoteTimeout bounds ls-remote queries, which should be quick
const lsRemoteTimeout = 30 * time.Second

// pushEnv prevents git from prompting for credentials and forces English
// output so the result parsing is locale-independent.
var pushEnv = []string{
	"GIT_TERMINAL_PROMPT=0",
	"LC_ALL=C",
	"LANG=C",
}

// PushOptions controls a push operation
type PushOptions struct {
	// Remote name; "origin" when empty
	Remote string
	// Refspecs to push; current branch when empty
	Refspecs []string
	// Force overwrites remote refs
	Force bool
	// Tags pushes all tags
	Tags bool
	// Timeout overrides DefaultPushTimeout when non-zero
	Timeout time.Duration
}

// PushResult reports what a push did.
//
// RefsPushed counts ref updates, not individual commits: pushing one branch
// with five commits counts as one. TagsPushed is a conservative estimate,
// 1 when --tags succeeded, otherwise the number of refs/tags/ refspecs,
// because parsing git's per-tag output is fragile across versions.
type PushResult struct {
	Remote     string
	RefsPushed int
	TagsPushed int
	Warnings   []string
}

// Push pushes commits and/or tags to a remote using the git CLI. go-git is
// not used here: its push support does not cover credential helpers and
// ssh-agent configurations the way the native client does.
func (r *Repository) Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	remote := opts.Remote
	if remote == "" {
		remote = "origin"
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultPushTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"push"}
	if opts.Force {
		args = append(args, "--force")
	}
	if opts.Tags {
		args = append(args, "--tags")
	}
	args = append(args, remote)
	if len(opts.Refspecs) == 0 {
		args = append(args, "HEAD")
	} else {
		args = append(args, opts.Refspecs...)
	}

	// Ref-update summaries arrive on stderr when git is not attached to a
	// terminal, so both streams are combined before parsing.
	stdout, stderr, err := r.runner.RunCapture(ctx, pushEnv, args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("push to %s: %w after %s", remote, shipiterrors.ErrPushTimeout, timeout)
		}
		return nil, shipiterrors.NewPushError(remote, strings.TrimSpace(stderr), err)
	}

	combined := stdout + "\n" + stderr

	result := &PushResult{
		Remote:     remote,
		RefsPushed: countRefUpdates(combined),
		TagsPushed: countTagsPushed(opts),
	}
	if opts.Force {
		result.Warnings = append(result.Warnings, "force push executed")
	}

	return result, nil
}

// countRefUpdates counts successful ref-update lines in push output.
// Matches:
//
//	abc123..def456  ref -> ref    (commit range)
//	* [new branch]  ref -> ref    (new ref)
//	+ abc...def     ref -> ref    (forced update)
//
// and excludes rejections and errors.
func countRefUpdates(output string) int {
	count := 0
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimLeft(line, " \t")

		if !strings.Contains(trimmed, " -> ") {
			continue
		}
		if strings.HasPrefix(trimmed, "!") ||
			strings.HasPrefix(trimmed, "error:") ||
			strings.Contains(trimmed, "[rejected]") {
			continue
		}

		if isHexDigit(trimmed) ||
			strings.HasPrefix(trimmed, "* [new") ||
			strings.HasPrefix(trimmed, "+") {
			count++
		}
	}
	return count
}

func isHexDigit(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func countTagsPushed(opts PushOptions) int {
	if opts.Tags {
		return 1
	}
	count := 0
	for _, refspec := range opts.Refspecs {
		if strings.Contains(refspec, "refs/tags/") {
			count++
		}
	}
	return count
}

// DeleteRemoteTag deletes a tag on the remote (git push <remote> --delete refs/tags/<name>)
func (r *Repository) DeleteRemoteTag(ctx context.Context, remote, tagName string) error {
	tagName = strings.TrimPrefix(tagName, "refs/tags/")
	if err := validateRefName(tagName); err != nil {
		return fmt.Errorf("invalid tag name: %w", err)
	}

	_, err := r.runner.RunWithEnv(ctx, pushEnv, "push", remote, "--delete", "refs/tags/"+tagName)
	if err != nil {
		return fmt.Errorf("failed to delete remote tag %s: %w", tagName, err)
	}
	return nil
}

// DeleteRemoteBranch deletes a branch on the remote. The full refs/heads/
// form is pushed to avoid ambiguity with a tag of the same name.
func (r *Repository) DeleteRemoteBranch(ctx context.Context, remote, branchName string) error {
	branchName = strings.TrimPrefix(branchName, "refs/heads/")
	if err := validateRefName(branchName); err != nil {
		return fmt.Errorf("invalid branch name: %w", err)
	}

	_, err := r.runner.RunWithEnv(ctx, pushEnv, "push", remote, "--delete", "refs/heads/"+branchName)
	if err != nil {
		return fmt.Errorf("failed to delete remote branch %s: %w", branchName, err)
	}
	return nil
}

// RemoteTagExists checks whether a tag exists on the remote via ls-remote,
// which is lighter than a fetch.
func (r *Repository) RemoteTagExists(ctx context.Context, remote, tagName string) (bool, error) {
	tagName = strings.TrimPrefix(tagName, "refs/tags/")
	if err := validateRefName(tagName); err != nil {
		return false, fmt.Errorf("invalid tag name: %w", err)
	}
	return r.lsRemoteExists(ctx, remote, "--tags", "refs/tags/"+tagName)
}

// RemoteBranchExists checks whether a branch exists on the remote via ls-remote
func (r *Repository) RemoteBranchExists(ctx context.Context, remote, branchName string) (bool, error) {
	branchName = strings.TrimPrefix(branchName, "refs/heads/")
	if err := validateRefName(branchName); err != nil {
		return false, fmt.Errorf("invalid branch name: %w", err)
	}
	return r.lsRemoteExists(ctx, remote, "--heads", "refs/heads/"+branchName)
}

func (r *Repository) lsRemoteExists(ctx context.Context, remote, filter, refspec string) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, lsRemoteTimeout)
	defer cancel()

	output, err := r.runner.RunWithEnv(ctx, pushEnv, "ls-remote", filter, remote, refspec)
	if err != nil {
		return false, fmt.Errorf("ls-remote failed: %w", err)
	}
	return strings.TrimSpace(output) != "", nil
}

func validateRefName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("name cannot contain '..': %s", name)
	}
	if strings.HasPrefix(name, "/") {
		return fmt.Errorf("name cannot start with '/': %s", name)
	}
	return nil
}
