package publish_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"shipit.dev/shipit/internal/publish"
)

func TestNewGitHubForge(t *testing.T) {
	t.Run("builds a client from the remote URL", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "test-token")

		forge, err := publish.NewGitHubForge(context.Background(), "git@github.com:owner/repo.git")
		require.NoError(t, err)

		owner, repo := forge.OwnerRepo()
		require.Equal(t, "owner", owner)
		require.Equal(t, "repo", repo)
	})

	t.Run("falls back to GH_TOKEN", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("GH_TOKEN", "test-token")

		_, err := publish.NewGitHubForge(context.Background(), "https://github.com/owner/repo")
		require.NoError(t, err)
	})

	t.Run("fails without a token", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("GH_TOKEN", "")

		_, err := publish.NewGitHubForge(context.Background(), "https://github.com/owner/repo")
		require.Error(t, err)
		require.Contains(t, err.Error(), "token")
	})

	t.Run("fails on an unparseable remote", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "test-token")

		_, err := publish.NewGitHubForge(context.Background(), "not-a-remote")
		require.Error(t, err)
	})
}
