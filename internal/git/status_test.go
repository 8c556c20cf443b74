package git_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	shipiterrors "shipit.dev/shipit/internal/errors"
	"shipit.dev/shipit/internal/git"
	"shipit.dev/shipit/testhelpers"
)

func TestIsClean(t *testing.T) {
	scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		return s.Repo.CreateChangeAndCommit("initial", "init")
	})

	repo, err := git.OpenRepository(scene.Dir)
	require.NoError(t, err)

	clean, err := repo.IsClean(context.Background())
	require.NoError(t, err)
	require.True(t, clean)

	require.NoError(t, scene.Repo.CreateChange("dirty", "work"))

	clean, err = repo.IsClean(context.Background())
	require.NoError(t, err)
	require.False(t, clean)
}

func TestCurrentBranch(t *testing.T) {
	t.Run("returns the checked out branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		branch, err := repo.CurrentBranch(context.Background())
		require.NoError(t, err)
		require.Equal(t, "main", branch.Name)
		require.Len(t, branch.SHA, 40)
	})

	t.Run("errors on detached HEAD", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		require.NoError(t, scene.Repo.CheckoutDetached("HEAD"))

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		_, err = repo.CurrentBranch(context.Background())
		require.ErrorIs(t, err, shipiterrors.ErrNotOnBranch)
	})
}

func TestRemotes(t *testing.T) {
	t.Run("lists configured remotes", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		bareDir, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		remotes, err := repo.Remotes(context.Background())
		require.NoError(t, err)
		require.Len(t, remotes, 1)
		require.Equal(t, "origin", remotes[0].Name)
		require.Equal(t, bareDir, remotes[0].FetchURL)
	})

	t.Run("returns empty list without remotes", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		remotes, err := repo.Remotes(context.Background())
		require.NoError(t, err)
		require.Empty(t, remotes)
	})
}

func TestDefaultRemote(t *testing.T) {
	t.Run("prefers origin", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		_, err := scene.Repo.CreateBareRemote("upstream")
		require.NoError(t, err)
		_, err = scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		remote, err := repo.DefaultRemote(context.Background())
		require.NoError(t, err)
		require.Equal(t, "origin", remote)
	})

	t.Run("falls back to the only remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		_, err := scene.Repo.CreateBareRemote("upstream")
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		remote, err := repo.DefaultRemote(context.Background())
		require.NoError(t, err)
		require.Equal(t, "upstream", remote)
	})

	t.Run("errors without remotes", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		_, err = repo.DefaultRemote(context.Background())
		require.ErrorIs(t, err, shipiterrors.ErrNoRemote)
	})
}

func TestValidateReleaseReadiness(t *testing.T) {
	t.Run("passes for a clean repository with a remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		_, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		result, err := repo.ValidateReleaseReadiness(context.Background())
		require.NoError(t, err)
		require.True(t, result.Valid)
		require.Empty(t, result.Issues)
	})

	t.Run("collects all problems", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		require.NoError(t, scene.Repo.CheckoutDetached("HEAD"))
		require.NoError(t, scene.Repo.CreateChange("dirty", "work"))

		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		result, err := repo.ValidateReleaseReadiness(context.Background())
		require.NoError(t, err)
		require.False(t, result.Valid)
		require.Len(t, result.Issues, 3)
	})
}
