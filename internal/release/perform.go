package release

import (
	"context"
	"errors"
	"fmt"

	shipiterrors "shipit.dev/shipit/internal/errors"
	"shipit.dev/shipit/internal/git"
)

// PerformOptions control the git phase of a release
type PerformOptions struct {
	// Version being released, without the v prefix
	Version string
	// Remote to push to, empty uses the configured default
	Remote string
	// SkipPush leaves the commit and tag local
	SkipPush bool
}

// PerformResult reports what the git phase accomplished. On error the
// fields still describe the steps that did complete, so the caller can
// persist them for resume or rollback.
type PerformResult struct {
	// PreviousHead is the commit to reset to on rollback
	PreviousHead string
	// Commit is the release commit, nil for a tag-only release
	Commit *git.CommitInfo
	// Tag is the created release tag
	Tag *git.TagInfo
	// Pushed is true once commits and tags reached the remote
	Pushed bool
	// Push holds the push outcome when a push was attempted
	Push *git.PushResult
	// Warnings collects non-fatal notes, push heuristics included
	Warnings []string
}

// PerformRelease runs the git phase: capture the previous HEAD, commit
// any pending changes, tag, then push commits and tags. A clean worktree
// releases as a tag on the current HEAD. The steps are not atomic. A
// failed push leaves the local commit and tag in place and the returned
// result carries enough to resume or roll back.
func (m *Manager) PerformRelease(ctx context.Context, opts PerformOptions) (*PerformResult, error) {
	if opts.Version == "" {
		return nil, fmt.Errorf("no version to release")
	}

	result := &PerformResult{}

	previousHead, err := m.repo.HeadSHA()
	if err != nil {
		return nil, err
	}
	result.PreviousHead = previousHead

	commit, err := m.commitRelease(ctx, opts.Version, result)
	if err != nil {
		return result, err
	}
	result.Commit = commit

	tag, err := m.tagRelease(opts.Version)
	if err != nil {
		return result, err
	}
	result.Tag = tag

	if opts.SkipPush {
		return result, nil
	}

	if err := m.pushRelease(ctx, opts, result); err != nil {
		return result, err
	}
	result.Pushed = true

	return result, nil
}

func (m *Manager) commitRelease(ctx context.Context, ver string, result *PerformResult) (*git.CommitInfo, error) {
	message := m.cfg.CommitMessageFor(ver)

	commit, err := m.repo.CommitRelease(ctx, message)
	if err != nil {
		if errors.Is(err, shipiterrors.ErrNothingToCommit) {
			result.Warnings = append(result.Warnings, "nothing to commit, tagging current HEAD")
			return nil, nil
		}
		return nil, err
	}
	return commit, nil
}

func (m *Manager) tagRelease(ver string) (*git.TagInfo, error) {
	opts := git.TagOptions{Name: "v" + ver}
	if m.cfg.UseAnnotatedTags() {
		opts.Message = m.cfg.TagMessageFor(ver)
	}
	return m.repo.CreateTag(opts)
}

// pushRelease pushes commits first, then tags. The split keeps a tag from
// landing on the remote before the commit it points at.
func (m *Manager) pushRelease(ctx context.Context, opts PerformOptions, result *PerformResult) error {
	remote := opts.Remote
	if remote == "" {
		remote = m.cfg.RemoteName()
	}

	pushResult, err := m.repo.Push(ctx, git.PushOptions{Remote: remote})
	if err != nil {
		return fmt.Errorf("failed to push commits: %w", err)
	}
	result.Push = pushResult
	result.Warnings = append(result.Warnings, pushResult.Warnings...)

	if !m.cfg.ShouldPushTags() {
		result.Warnings = append(result.Warnings, "tag push disabled, release tag is local only")
		return nil
	}

	tagPush, err := m.repo.Push(ctx, git.PushOptions{
		Remote:   remote,
		Refspecs: []string{"refs/tags/" + result.Tag.Name},
	})
	if err != nil {
		return fmt.Errorf("failed to push tag %s: %w", result.Tag.Name, err)
	}
	result.Push.TagsPushed += tagPush.RefsPushed
	result.Warnings = append(result.Warnings, tagPush.Warnings...)

	return nil
}
