// Package release sequences the multi-step git work of a release: capture a
// backup point, commit, tag, push, and when something goes wrong, unwind in
// an order that never leaves the repository worse than it found it.
package release

import (
	"context"
	"fmt"
	"time"

	"shipit.dev/shipit/internal/config"
	"shipit.dev/shipit/internal/git"
	"shipit.dev/shipit/internal/version"
)

// Manager performs the git phase of a release against one repository
type Manager struct {
	repo *git.Repository
	cfg  *config.Config
}

// NewManager creates a Manager for the repository
func NewManager(repo *git.Repository, cfg *config.Config) *Manager {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Manager{repo: repo, cfg: cfg}
}

// Repo returns the underlying repository
func (m *Manager) Repo() *git.Repository {
	return m.repo
}

// BackupPoint records where the repository was before a release so a
// rollback knows what to restore
type BackupPoint struct {
	// HeadSHA is the commit HEAD pointed at
	HeadSHA string
	// Branch the release started on
	Branch string
	// CreatedAt is when the backup was taken
	CreatedAt time.Time
}

// CreateBackupPoint captures the current HEAD and branch
func (m *Manager) CreateBackupPoint(ctx context.Context) (*BackupPoint, error) {
	sha, err := m.repo.HeadSHA()
	if err != nil {
		return nil, fmt.Errorf("failed to capture backup point: %w", err)
	}

	branch, err := m.repo.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	return &BackupPoint{
		HeadSHA:   sha,
		Branch:    branch.Name,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// RestoreFromBackup hard resets the repository to the backup point. Any
// commits made after the backup are discarded.
func (m *Manager) RestoreFromBackup(ctx context.Context, backup *BackupPoint) error {
	if backup == nil || backup.HeadSHA == "" {
		return fmt.Errorf("no backup point to restore from")
	}
	if err := m.repo.HardReset(ctx, backup.HeadSHA); err != nil {
		return fmt.Errorf("failed to restore from backup: %w", err)
	}
	return nil
}

// Stats summarizes the repository for status display
type Stats struct {
	Root          string
	Branch        string
	HeadSHA       string
	Clean         bool
	TagCount      int
	LatestTag     string
	DefaultRemote string
}

// CollectStats gathers repository information for the status command.
// Missing remotes and detached HEAD are reported as empty fields rather
// than errors.
func (m *Manager) CollectStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Root: m.repo.Root()}

	sha, err := m.repo.HeadSHA()
	if err != nil {
		return nil, err
	}
	stats.HeadSHA = sha

	if branch, err := m.repo.CurrentBranch(ctx); err == nil {
		stats.Branch = branch.Name
	}

	clean, err := m.repo.IsClean(ctx)
	if err != nil {
		return nil, err
	}
	stats.Clean = clean

	tags, err := m.repo.ListTags()
	if err != nil {
		return nil, err
	}
	stats.TagCount = len(tags)

	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	if latest := version.Latest(names); latest != nil {
		stats.LatestTag = version.TagName(latest)
	}

	if remote, err := m.repo.DefaultRemote(ctx); err == nil {
		stats.DefaultRemote = remote
	}

	return stats, nil
}
