package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"shipit.dev/shipit/internal/config"
	"shipit.dev/shipit/internal/git"
	"shipit.dev/shipit/internal/version"
	"shipit.dev/shipit/internal/workspace"
)

// Publisher tags workspace modules and creates the forge release
type Publisher struct {
	repo  *git.Repository
	forge Forge
	cfg   *config.Config
}

// NewPublisher creates a Publisher. forge may be nil when only module
// tagging is wanted.
func NewPublisher(repo *git.Repository, forge Forge, cfg *config.Config) *Publisher {
	return &Publisher{repo: repo, forge: forge, cfg: cfg}
}

// TagModules creates per-module tags (dir/vX.Y.Z) for every nested module
// in dependency order and pushes them to the remote. The root module is
// covered by the workspace tag and is skipped, as are modules excluded by
// configuration. Returns the tag names created, including any created
// before a failure.
func (p *Publisher) TagModules(ctx context.Context, ws *workspace.Workspace, v *semver.Version, remote string, alreadyTagged []string) ([]string, error) {
	order, err := ws.PublishOrder()
	if err != nil {
		return nil, err
	}

	done := make(map[string]bool, len(alreadyTagged))
	for _, tag := range alreadyTagged {
		done[tag] = true
	}

	var created []string
	for _, mod := range order {
		if mod.Dir == "." || p.cfg.SkipsModule(mod.Dir) {
			continue
		}

		tagName := version.ModuleTagName(mod.Dir, v)
		if done[tagName] {
			created = append(created, tagName)
			continue
		}

		exists, err := p.repo.TagExists(tagName)
		if err != nil {
			return created, err
		}
		if !exists {
			opts := git.TagOptions{Name: tagName}
			if p.cfg.UseAnnotatedTags() {
				opts.Message = p.cfg.TagMessageFor(v.String())
			}
			if _, err := p.repo.CreateTag(opts); err != nil {
				return created, fmt.Errorf("failed to tag module %s: %w", mod.Path, err)
			}
		}

		if _, err := p.repo.Push(ctx, git.PushOptions{
			Remote:   remote,
			Refspecs: []string{"refs/tags/" + tagName},
		}); err != nil {
			return created, fmt.Errorf("failed to push tag %s: %w", tagName, err)
		}

		created = append(created, tagName)
	}

	return created, nil
}

// CreateRelease creates the forge release for the workspace tag. Returns
// the existing release when one is already attached to the tag, so resume
// does not create duplicates.
func (p *Publisher) CreateRelease(ctx context.Context, v *semver.Version, body string) (*ReleaseInfo, error) {
	if p.forge == nil {
		return nil, fmt.Errorf("no forge client configured")
	}

	tagName := version.TagName(v)

	existing, err := p.forge.GetReleaseByTag(ctx, tagName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	return p.forge.CreateRelease(ctx, ReleaseOptions{
		TagName:    tagName,
		Name:       tagName,
		Body:       body,
		Draft:      p.cfg.DraftRelease,
		Prerelease: v.Prerelease() != "",
	})
}

// ReleaseNotes builds a simple changelog from commits since the previous
// release tag. Without a previous tag the last few commits are listed.
func (p *Publisher) ReleaseNotes(ctx context.Context, previousTag string) (string, error) {
	var commits []git.CommitInfo
	var err error
	if previousTag != "" {
		commits, err = p.repo.CommitsSince(ctx, previousTag)
	} else {
		commits, err = p.repo.RecentCommits(ctx, 20)
	}
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, commit := range commits {
		fmt.Fprintf(&b, "- %s (%s)\n", commit.Subject, commit.ShortHash)
	}
	return b.String(), nil
}
