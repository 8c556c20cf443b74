package git_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"shipit.dev/shipit/internal/git"
	"shipit.dev/shipit/testhelpers"
)

func TestPush(t *testing.T) {
	t.Run("pushes current branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		bareDir, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		result, err := repo.Push(context.Background(), git.PushOptions{})
		require.NoError(t, err)
		require.Equal(t, "origin", result.Remote)
		require.Equal(t, 1, result.RefsPushed)
		require.Equal(t, 0, result.TagsPushed)
		require.Empty(t, result.Warnings)

		require.True(t, testhelpers.RemoteHasBranch(bareDir, "main"))
	})

	t.Run("pushes a tag refspec", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		bareDir, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.CreateTag("v1.0.0"))

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		result, err := repo.Push(context.Background(), git.PushOptions{
			Refspecs: []string{"refs/tags/v1.0.0"},
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.RefsPushed)
		require.Equal(t, 1, result.TagsPushed)

		require.True(t, testhelpers.RemoteHasTag(bareDir, "v1.0.0"))
	})

	t.Run("pushes all tags with the tags flag", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		bareDir, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.CreateTag("v1.0.0"))
		require.NoError(t, scene.Repo.CreateTag("v1.1.0"))

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		result, err := repo.Push(context.Background(), git.PushOptions{Tags: true})
		require.NoError(t, err)
		// Conservative estimate, not a per-tag count
		require.Equal(t, 1, result.TagsPushed)

		require.True(t, testhelpers.RemoteHasTag(bareDir, "v1.0.0"))
		require.True(t, testhelpers.RemoteHasTag(bareDir, "v1.1.0"))
	})

	t.Run("force push adds a warning", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		_, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		result, err := repo.Push(context.Background(), git.PushOptions{Force: true})
		require.NoError(t, err)
		require.Contains(t, result.Warnings, "force push executed")
	})

	t.Run("fails against a missing remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		_, err = repo.Push(context.Background(), git.PushOptions{})
		require.Error(t, err)
	})
}

func TestDeleteRemoteTag(t *testing.T) {
	t.Run("deletes a pushed tag", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		bareDir, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.CreateTag("v1.0.0"))

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		_, err = repo.Push(context.Background(), git.PushOptions{
			Refspecs: []string{"refs/tags/v1.0.0"},
		})
		require.NoError(t, err)
		require.True(t, testhelpers.RemoteHasTag(bareDir, "v1.0.0"))

		require.NoError(t, repo.DeleteRemoteTag(context.Background(), "origin", "v1.0.0"))
		require.False(t, testhelpers.RemoteHasTag(bareDir, "v1.0.0"))

		// The local tag is untouched
		require.True(t, scene.Repo.TagExists("v1.0.0"))
	})

	t.Run("rejects malformed tag names", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		require.Error(t, repo.DeleteRemoteTag(context.Background(), "origin", "a..b"))
	})
}

func TestDeleteRemoteBranch(t *testing.T) {
	scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		return s.Repo.CreateChangeAndCommit("initial", "init")
	})
	bareDir, err := scene.Repo.CreateBareRemote("origin")
	require.NoError(t, err)
	require.NoError(t, scene.Repo.RunGitCommand("branch", "feature"))
	require.NoError(t, scene.Repo.PushBranch("origin", "feature"))
	require.True(t, testhelpers.RemoteHasBranch(bareDir, "feature"))

	repo, err := git.OpenRepository(scene.Dir)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteRemoteBranch(context.Background(), "origin", "feature"))
	require.False(t, testhelpers.RemoteHasBranch(bareDir, "feature"))

	// The checked out branch is untouched
	name, err := scene.Repo.CurrentBranchName()
	require.NoError(t, err)
	require.Equal(t, "main", name)
}

func TestRemoteBranchExists(t *testing.T) {
	scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		return s.Repo.CreateChangeAndCommit("initial", "init")
	})
	_, err := scene.Repo.CreateBareRemote("origin")
	require.NoError(t, err)

	repo, err := git.OpenRepository(scene.Dir)
	require.NoError(t, err)

	exists, err := repo.RemoteBranchExists(context.Background(), "origin", "main")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, scene.Repo.PushBranch("origin", "main"))

	exists, err = repo.RemoteBranchExists(context.Background(), "origin", "main")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestRemoteTagExists(t *testing.T) {
	scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		return s.Repo.CreateChangeAndCommit("initial", "init")
	})
	_, err := scene.Repo.CreateBareRemote("origin")
	require.NoError(t, err)
	require.NoError(t, scene.Repo.CreateTag("v1.0.0"))

	repo, err := git.OpenRepository(scene.Dir)
	require.NoError(t, err)

	exists, err := repo.RemoteTagExists(context.Background(), "origin", "v1.0.0")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = repo.Push(context.Background(), git.PushOptions{
		Refspecs: []string{"refs/tags/v1.0.0"},
	})
	require.NoError(t, err)

	exists, err = repo.RemoteTagExists(context.Background(), "origin", "v1.0.0")
	require.NoError(t, err)
	require.True(t, exists)
}
