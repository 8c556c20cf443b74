// Package publish creates forge releases and per-module tags once the git
// phase of a release has landed.
package publish

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// ReleaseOptions describe the forge release to create
type ReleaseOptions struct {
	TagName string
	Name    string
	Body    string
	Draft   bool
	// Prerelease marks versions with a pre-release segment
	Prerelease bool
}

// ReleaseInfo is the created forge release
type ReleaseInfo struct {
	ID      int64
	HTMLURL string
}

// Forge is the subset of forge API operations the publisher needs.
// Kept as an interface so tests can run without network access.
type Forge interface {
	// CreateRelease creates a release for an existing tag
	CreateRelease(ctx context.Context, opts ReleaseOptions) (*ReleaseInfo, error)

	// GetReleaseByTag returns the release for a tag, nil when none exists
	GetReleaseByTag(ctx context.Context, tagName string) (*ReleaseInfo, error)

	// DeleteRelease removes a release during rollback
	DeleteRelease(ctx context.Context, id int64) error
}

// GitHubForge implements Forge against the GitHub API
type GitHubForge struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubForge creates a Forge for the repository behind the remote URL,
// authenticating with GITHUB_TOKEN or GH_TOKEN
func NewGitHubForge(ctx context.Context, remoteURL string) (*GitHubForge, error) {
	info, err := ParseRemoteURL(remoteURL)
	if err != nil {
		return nil, err
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("no GitHub token found, set GITHUB_TOKEN or GH_TOKEN")
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	if info.Hostname != "github.com" {
		// GitHub Enterprise API endpoints
		baseURL, err := url.Parse(fmt.Sprintf("https://%s/api/v3/", info.Hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL for hostname %s: %w", info.Hostname, err)
		}
		uploadURL, err := url.Parse(fmt.Sprintf("https://%s/api/uploads/", info.Hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse upload URL for hostname %s: %w", info.Hostname, err)
		}
		client.BaseURL = baseURL
		client.UploadURL = uploadURL
	}

	return &GitHubForge{
		client: client,
		owner:  info.Owner,
		repo:   info.Repo,
	}, nil
}

// OwnerRepo returns the repository owner and name
func (f *GitHubForge) OwnerRepo() (string, string) {
	return f.owner, f.repo
}

// CreateRelease creates a GitHub release for an existing tag
func (f *GitHubForge) CreateRelease(ctx context.Context, opts ReleaseOptions) (*ReleaseInfo, error) {
	release := &github.RepositoryRelease{
		TagName:    github.String(opts.TagName),
		Name:       github.String(opts.Name),
		Draft:      github.Bool(opts.Draft),
		Prerelease: github.Bool(opts.Prerelease),
	}
	if opts.Body != "" {
		release.Body = github.String(opts.Body)
	}

	created, _, err := f.client.Repositories.CreateRelease(ctx, f.owner, f.repo, release)
	if err != nil {
		return nil, fmt.Errorf("failed to create release for %s: %w", opts.TagName, err)
	}

	return &ReleaseInfo{
		ID:      created.GetID(),
		HTMLURL: created.GetHTMLURL(),
	}, nil
}

// GetReleaseByTag returns the release for a tag, nil when none exists
func (f *GitHubForge) GetReleaseByTag(ctx context.Context, tagName string) (*ReleaseInfo, error) {
	release, resp, err := f.client.Repositories.GetReleaseByTag(ctx, f.owner, f.repo, tagName)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up release for %s: %w", tagName, err)
	}

	return &ReleaseInfo{
		ID:      release.GetID(),
		HTMLURL: release.GetHTMLURL(),
	}, nil
}

// DeleteRelease removes a release
func (f *GitHubForge) DeleteRelease(ctx context.Context, id int64) error {
	if _, err := f.client.Repositories.DeleteRelease(ctx, f.owner, f.repo, id); err != nil {
		return fmt.Errorf("failed to delete release %d: %w", id, err)
	}
	return nil
}
