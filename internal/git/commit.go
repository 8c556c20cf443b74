package git

import (
	"context"
	"fmt"
	"strings"
	"time"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

// CommitInfo describes a single commit
type CommitInfo struct {
	Hash        string
	ShortHash   string
	Subject     string
	AuthorName  string
	AuthorEmail string
	When        time.Time
	Parents     []string
}

// StageAll stages all changes in the working directory (git add -A)
func (r *Repository) StageAll(ctx context.Context) error {
	_, err := r.runner.Run(ctx, "add", "-A")
	if err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// HasStagedChanges returns true if there are staged changes ready to commit
func (r *Repository) HasStagedChanges(ctx context.Context) (bool, error) {
	// diff --cached --quiet exits 1 when there are staged changes
	_, err := r.runner.Run(ctx, "diff", "--cached", "--quiet")
	if err != nil {
		return true, nil
	}
	return false, nil
}

// Commit creates a commit with the given message. The commit is created via
// the git CLI so hooks and commit signing behave exactly as they would for a
// user-driven commit.
func (r *Repository) Commit(ctx context.Context, message string) error {
	_, err := r.runner.Run(ctx, "commit", "-m", message)
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// CommitRelease stages all changes and creates the release commit, returning
// information about the created commit read back through go-git.
func (r *Repository) CommitRelease(ctx context.Context, message string) (*CommitInfo, error) {
	if err := r.StageAll(ctx); err != nil {
		return nil, err
	}

	staged, err := r.HasStagedChanges(ctx)
	if err != nil {
		return nil, err
	}
	if !staged {
		return nil, fmt.Errorf("%w: working directory matches HEAD", shipiterrors.ErrNothingToCommit)
	}

	if err := r.Commit(ctx, message); err != nil {
		return nil, err
	}

	return r.HeadCommit()
}

// HeadCommit returns information about the commit HEAD points at,
// read from the go-git object model.
func (r *Repository) HeadCommit() (*CommitInfo, error) {
	head, err := r.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := r.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", head.Hash(), err)
	}

	parents := make([]string, 0, len(commit.ParentHashes))
	for _, p := range commit.ParentHashes {
		parents = append(parents, p.String())
	}

	subject, _, _ := strings.Cut(commit.Message, "\n")

	return &CommitInfo{
		Hash:        commit.Hash.String(),
		ShortHash:   commit.Hash.String()[:7],
		Subject:     strings.TrimSpace(subject),
		AuthorName:  commit.Author.Name,
		AuthorEmail: commit.Author.Email,
		When:        commit.Author.When,
		Parents:     parents,
	}, nil
}

// RecentCommits returns up to count commits starting from HEAD, newest first.
// Uses a NUL-separated log format so subjects containing unusual characters
// parse reliably.
func (r *Repository) RecentCommits(ctx context.Context, count int) ([]CommitInfo, error) {
	return r.logCommits(ctx, fmt.Sprintf("-%d", count))
}

// CommitsSince returns commits reachable from HEAD but not from revision,
// newest first. Used for changelog generation between release tags.
func (r *Repository) CommitsSince(ctx context.Context, revision string) ([]CommitInfo, error) {
	return r.logCommits(ctx, revision+"..HEAD")
}

func (r *Repository) logCommits(ctx context.Context, rangeArg string) ([]CommitInfo, error) {
	output, err := r.runner.RunRaw(ctx,
		"log",
		rangeArg,
		"--format=%H%x00%h%x00%s%x00%an%x00%ae%x00%aI%x00%P",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}

	var commits []CommitInfo
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "\x00")
		if len(parts) < 7 {
			continue
		}

		when, err := time.Parse(time.RFC3339, parts[5])
		if err != nil {
			when = time.Time{}
		}

		var parents []string
		if p := strings.TrimSpace(parts[6]); p != "" {
			parents = strings.Fields(p)
		}

		commits = append(commits, CommitInfo{
			Hash:        parts[0],
			ShortHash:   parts[1],
			Subject:     parts[2],
			AuthorName:  parts[3],
			AuthorEmail: parts[4],
			When:        when,
			Parents:     parents,
		})
	}

	return commits, nil
}
