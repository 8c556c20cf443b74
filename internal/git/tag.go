package git

import (
	"errors"
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

// TagOptions controls tag creation
type TagOptions struct {
	// Name of the tag, e.g. "v1.2.3"
	Name string
	// Message makes the tag annotated when non-empty
	Message string
	// Target revision; HEAD when empty
	Target string
	// Force replaces an existing tag instead of failing
	Force bool
}

// TagInfo describes a tag
type TagInfo struct {
	Name         string
	Message      string
	TargetCommit string
	When         time.Time
	Annotated    bool
}

// CreateTag creates a tag through the go-git object model. An annotated tag
// object is written when a message is given, otherwise a lightweight ref.
// The tagger signature comes from user.name/user.email; annotated tags fail
// if those are not configured.
func (r *Repository) CreateTag(opts TagOptions) (*TagInfo, error) {
	target, err := r.resolveTagTarget(opts.Target)
	if err != nil {
		return nil, err
	}

	if _, err := r.Tag(opts.Name); err == nil {
		if !opts.Force {
			return nil, shipiterrors.NewTagExistsError(opts.Name)
		}
		// go-git has no force-create, so replace by deleting first
		if err := r.Repository.DeleteTag(opts.Name); err != nil {
			return nil, fmt.Errorf("failed to replace tag %s: %w", opts.Name, err)
		}
	}

	annotated := opts.Message != ""
	var createOpts *gogit.CreateTagOptions
	if annotated {
		tagger, err := r.signature()
		if err != nil {
			return nil, err
		}
		createOpts = &gogit.CreateTagOptions{
			Tagger:  tagger,
			Message: opts.Message,
		}
	}

	if _, err := r.Repository.CreateTag(opts.Name, target, createOpts); err != nil {
		return nil, fmt.Errorf("failed to create tag %s: %w", opts.Name, err)
	}

	when := time.Now()
	if commit, err := r.CommitObject(target); err == nil {
		when = commit.Author.When
	}

	return &TagInfo{
		Name:         opts.Name,
		Message:      opts.Message,
		TargetCommit: target.String(),
		When:         when,
		Annotated:    annotated,
	}, nil
}

// DeleteTag deletes a local tag
func (r *Repository) DeleteTag(name string) error {
	if err := r.Repository.DeleteTag(name); err != nil {
		if errors.Is(err, gogit.ErrTagNotFound) {
			return shipiterrors.NewTagNotFoundError(name)
		}
		return fmt.Errorf("failed to delete tag %s: %w", name, err)
	}
	return nil
}

// TagExists returns true if the given tag exists locally
func (r *Repository) TagExists(name string) (bool, error) {
	_, err := r.Tag(name)
	if err != nil {
		if errors.Is(err, gogit.ErrTagNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up tag %s: %w", name, err)
	}
	return true, nil
}

// ListTags returns all tags in the repository. Annotated tags are peeled to
// report their message, tagger time, and target commit.
func (r *Repository) ListTags() ([]TagInfo, error) {
	iter, err := r.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	var tags []TagInfo
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		info := TagInfo{
			Name: ref.Name().Short(),
			When: time.Now(),
		}

		if tagObj, err := r.TagObject(ref.Hash()); err == nil {
			info.Annotated = true
			info.Message = tagObj.Message
			info.TargetCommit = tagObj.Target.String()
			info.When = tagObj.Tagger.When
		} else {
			info.TargetCommit = ref.Hash().String()
			if commit, err := r.CommitObject(ref.Hash()); err == nil {
				info.When = commit.Author.When
			}
		}

		tags = append(tags, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	return tags, nil
}

func (r *Repository) resolveTagTarget(target string) (plumbing.Hash, error) {
	if target == "" {
		head, err := r.Head()
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("failed to resolve HEAD: %w", err)
		}
		return head.Hash(), nil
	}

	hash, err := r.ResolveRevision(plumbing.Revision(target))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("invalid tag target %s: %w", target, err)
	}
	return *hash, nil
}

// signature builds a tagger signature from the repository's git config
func (r *Repository) signature() (*object.Signature, error) {
	cfg, err := r.ConfigScoped(config.SystemScope)
	if err != nil {
		return nil, fmt.Errorf("failed to read git config: %w", err)
	}

	if cfg.User.Name == "" {
		return nil, fmt.Errorf("git user.name not configured")
	}
	if cfg.User.Email == "" {
		return nil, fmt.Errorf("git user.email not configured")
	}

	return &object.Signature{
		Name:  cfg.User.Name,
		Email: cfg.User.Email,
		When:  time.Now(),
	}, nil
}
