package git

import (
	"context"
	"fmt"
)

// ResetMode selects how git reset treats the index and worktree
type ResetMode int

const (
	// ResetSoft moves HEAD only
	ResetSoft ResetMode = iota
	// ResetMixed moves HEAD and resets the index
	ResetMixed
	// ResetHard moves HEAD and discards index and worktree changes
	ResetHard
)

func (m ResetMode) flag() string {
	switch m {
	case ResetSoft:
		return "--soft"
	case ResetHard:
		return "--hard"
	default:
		return "--mixed"
	}
}

func (m ResetMode) String() string {
	switch m {
	case ResetSoft:
		return "soft"
	case ResetHard:
		return "hard"
	default:
		return "mixed"
	}
}

// Reset resets the current branch to the given revision
func (r *Repository) Reset(ctx context.Context, revision string, mode ResetMode) error {
	_, err := r.runner.Run(ctx, "reset", mode.flag(), revision)
	if err != nil {
		return fmt.Errorf("failed to %s reset to %s: %w", mode, revision, err)
	}
	return nil
}

// HardReset resets the current branch to the given revision, discarding all
// local changes
func (r *Repository) HardReset(ctx context.Context, revision string) error {
	return r.Reset(ctx, revision, ResetHard)
}

// SoftReset moves HEAD to the given revision keeping the index and worktree
func (r *Repository) SoftReset(ctx context.Context, revision string) error {
	return r.Reset(ctx, revision, ResetSoft)
}
