package release

import (
	"context"
	"errors"
	"fmt"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

// RollbackOptions identify what to unwind
type RollbackOptions struct {
	// TagName of the release tag to remove
	TagName string
	// PreviousHead to hard reset back to, empty skips the reset
	PreviousHead string
	// Remote the tag may have been pushed to
	Remote string
	// Pushed indicates the release reached the remote, skipping the
	// remote tag deletion when false
	Pushed bool
}

// RollbackResult reports the outcome of each unwind step
type RollbackResult struct {
	RemoteTagDeleted bool
	LocalTagDeleted  bool
	ResetPerformed   bool
	// Successful is false when a local step failed, remote cleanup
	// failures only warn
	Successful bool
	Warnings   []string
	Errors     []string
}

// Rollback unwinds a release in strict order: remote tag first, local tag
// second, hard reset last. The ordering matters. Deleting the remote tag
// first keeps other clones from fetching a tag that is about to vanish,
// and the reset runs last so the tags being deleted still resolve while
// they are removed. A failed remote deletion is a warning, the remote may
// never have seen the tag. Failed local steps mark the rollback
// unsuccessful but later steps still run, a partial unwind beats none.
func (m *Manager) Rollback(ctx context.Context, opts RollbackOptions) (*RollbackResult, error) {
	if opts.TagName == "" && opts.PreviousHead == "" {
		return nil, fmt.Errorf("nothing to roll back")
	}

	result := &RollbackResult{Successful: true}

	remote := opts.Remote
	if remote == "" {
		remote = m.cfg.RemoteName()
	}

	if opts.TagName != "" && opts.Pushed {
		if err := m.repo.DeleteRemoteTag(ctx, remote, opts.TagName); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("could not delete tag %s from %s: %v", opts.TagName, remote, err))
		} else {
			result.RemoteTagDeleted = true
		}
	}

	if opts.TagName != "" {
		if err := m.repo.DeleteTag(opts.TagName); err != nil {
			if errors.Is(err, shipiterrors.ErrTagNotFound) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("local tag %s was already gone", opts.TagName))
			} else {
				result.Successful = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("failed to delete local tag %s: %v", opts.TagName, err))
			}
		} else {
			result.LocalTagDeleted = true
		}
	}

	if opts.PreviousHead != "" {
		if err := m.repo.HardReset(ctx, opts.PreviousHead); err != nil {
			result.Successful = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("failed to reset to %s: %v", opts.PreviousHead, err))
		} else {
			result.ResetPerformed = true
		}
	}

	return result, nil
}
