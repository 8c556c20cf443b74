package git_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"shipit.dev/shipit/internal/git"
	"shipit.dev/shipit/testhelpers"
)

func TestHardReset(t *testing.T) {
	scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		return s.Repo.CreateChangeAndCommit("first", "a")
	})
	first, err := scene.Repo.GetCurrentSHA()
	require.NoError(t, err)
	require.NoError(t, scene.Repo.CreateChangeAndCommit("second", "b"))

	repo, err := git.OpenRepository(scene.Dir)
	require.NoError(t, err)

	require.NoError(t, repo.HardReset(context.Background(), first))

	head, err := scene.Repo.GetCurrentSHA()
	require.NoError(t, err)
	require.Equal(t, first, head)

	count, err := scene.Repo.GetCommitCount(first, "HEAD")
	require.NoError(t, err)
	require.Equal(t, 0, count)

	// The second commit's file is gone from the worktree
	_, err = os.Stat(filepath.Join(scene.Dir, "b_test.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestSoftReset(t *testing.T) {
	scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		return s.Repo.CreateChangeAndCommit("first", "a")
	})
	first, err := scene.Repo.GetCurrentSHA()
	require.NoError(t, err)
	require.NoError(t, scene.Repo.CreateChangeAndCommit("second", "b"))

	repo, err := git.OpenRepository(scene.Dir)
	require.NoError(t, err)

	require.NoError(t, repo.SoftReset(context.Background(), first))

	head, err := scene.Repo.GetCurrentSHA()
	require.NoError(t, err)
	require.Equal(t, first, head)

	// The change stays staged
	staged, err := repo.HasStagedChanges(context.Background())
	require.NoError(t, err)
	require.True(t, staged)
}

func TestResetModeString(t *testing.T) {
	require.Equal(t, "soft", git.ResetSoft.String())
	require.Equal(t, "mixed", git.ResetMixed.String())
	require.Equal(t, "hard", git.ResetHard.String())
}
