package publish_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"

	"shipit.dev/shipit/internal/config"
	"shipit.dev/shipit/internal/git"
	"shipit.dev/shipit/internal/publish"
	"shipit.dev/shipit/internal/workspace"
	"shipit.dev/shipit/testhelpers"
)

// mockForge records calls so publisher behavior can be asserted without
// network access
type mockForge struct {
	releases map[string]*publish.ReleaseInfo
	created  []publish.ReleaseOptions
	deleted  []int64
	nextID   int64
}

func newMockForge() *mockForge {
	return &mockForge{releases: make(map[string]*publish.ReleaseInfo)}
}

func (f *mockForge) CreateRelease(_ context.Context, opts publish.ReleaseOptions) (*publish.ReleaseInfo, error) {
	f.nextID++
	info := &publish.ReleaseInfo{
		ID:      f.nextID,
		HTMLURL: fmt.Sprintf("https://github.com/owner/repo/releases/tag/%s", opts.TagName),
	}
	f.releases[opts.TagName] = info
	f.created = append(f.created, opts)
	return info, nil
}

func (f *mockForge) GetReleaseByTag(_ context.Context, tagName string) (*publish.ReleaseInfo, error) {
	return f.releases[tagName], nil
}

func (f *mockForge) DeleteRelease(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func workspaceScene(t *testing.T) (*testhelpers.Scene, *git.Repository, *workspace.Workspace, string) {
	t.Helper()

	scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		if err := s.Repo.WriteFile("go.mod", "module example.com/widgets\n\ngo 1.25\n"); err != nil {
			return err
		}
		if err := s.Repo.WriteFile("api/go.mod", "module example.com/widgets/api\n\ngo 1.25\n"); err != nil {
			return err
		}
		cli := "module example.com/widgets/cli\n\ngo 1.25\n\nrequire example.com/widgets/api v0.0.0\n"
		if err := s.Repo.WriteFile("cli/go.mod", cli); err != nil {
			return err
		}
		return s.Repo.CreateChangeAndCommit("initial", "init")
	})

	repo, err := git.OpenRepository(scene.Dir)
	require.NoError(t, err)
	ws, err := workspace.Discover(scene.Dir)
	require.NoError(t, err)
	bareDir, err := scene.Repo.CreateBareRemote("origin")
	require.NoError(t, err)

	return scene, repo, ws, bareDir
}

func TestTagModules(t *testing.T) {
	v := semver.MustParse("1.2.0")

	t.Run("tags nested modules in dependency order", func(t *testing.T) {
		scene, repo, ws, bareDir := workspaceScene(t)
		publisher := publish.NewPublisher(repo, nil, &config.Config{})

		created, err := publisher.TagModules(context.Background(), ws, v, "origin", nil)
		require.NoError(t, err)
		require.Equal(t, []string{"api/v1.2.0", "cli/v1.2.0"}, created)

		for _, tag := range created {
			require.True(t, scene.Repo.TagExists(tag))
			require.True(t, testhelpers.RemoteHasTag(bareDir, tag))
		}
	})

	t.Run("skips the root module", func(t *testing.T) {
		_, repo, ws, _ := workspaceScene(t)
		publisher := publish.NewPublisher(repo, nil, &config.Config{})

		created, err := publisher.TagModules(context.Background(), ws, v, "origin", nil)
		require.NoError(t, err)
		for _, tag := range created {
			require.True(t, strings.Contains(tag, "/"))
		}
	})

	t.Run("skips modules excluded by configuration", func(t *testing.T) {
		_, repo, ws, bareDir := workspaceScene(t)
		cfg := &config.Config{SkipModules: []string{"cli"}}
		publisher := publish.NewPublisher(repo, nil, cfg)

		created, err := publisher.TagModules(context.Background(), ws, v, "origin", nil)
		require.NoError(t, err)
		require.Equal(t, []string{"api/v1.2.0"}, created)
		require.False(t, testhelpers.RemoteHasTag(bareDir, "cli/v1.2.0"))
	})

	t.Run("already tagged modules are not tagged again", func(t *testing.T) {
		scene, repo, ws, _ := workspaceScene(t)
		publisher := publish.NewPublisher(repo, nil, &config.Config{})

		created, err := publisher.TagModules(context.Background(), ws, v, "origin", []string{"api/v1.2.0"})
		require.NoError(t, err)
		require.Equal(t, []string{"api/v1.2.0", "cli/v1.2.0"}, created)

		// Only the cli tag was actually created locally
		require.False(t, scene.Repo.TagExists("api/v1.2.0"))
		require.True(t, scene.Repo.TagExists("cli/v1.2.0"))
	})

	t.Run("reuses an existing local tag", func(t *testing.T) {
		scene, repo, ws, bareDir := workspaceScene(t)
		require.NoError(t, scene.Repo.CreateTag("api/v1.2.0"))
		publisher := publish.NewPublisher(repo, nil, &config.Config{})

		created, err := publisher.TagModules(context.Background(), ws, v, "origin", nil)
		require.NoError(t, err)
		require.Equal(t, []string{"api/v1.2.0", "cli/v1.2.0"}, created)
		require.True(t, testhelpers.RemoteHasTag(bareDir, "api/v1.2.0"))
	})

	t.Run("returns created tags when a push fails", func(t *testing.T) {
		_, repo, ws, _ := workspaceScene(t)
		publisher := publish.NewPublisher(repo, nil, &config.Config{})

		created, err := publisher.TagModules(context.Background(), ws, v, "nosuchremote", nil)
		require.Error(t, err)
		require.Empty(t, created)
	})
}

func TestCreateRelease(t *testing.T) {
	t.Run("creates a release for the tag", func(t *testing.T) {
		_, repo, _, _ := workspaceScene(t)
		forge := newMockForge()
		publisher := publish.NewPublisher(repo, forge, &config.Config{})

		info, err := publisher.CreateRelease(context.Background(), semver.MustParse("1.2.0"), "notes")
		require.NoError(t, err)
		require.Contains(t, info.HTMLURL, "v1.2.0")
		require.Len(t, forge.created, 1)
		require.Equal(t, "v1.2.0", forge.created[0].TagName)
		require.Equal(t, "notes", forge.created[0].Body)
		require.False(t, forge.created[0].Prerelease)
	})

	t.Run("returns the existing release without creating another", func(t *testing.T) {
		_, repo, _, _ := workspaceScene(t)
		forge := newMockForge()
		publisher := publish.NewPublisher(repo, forge, &config.Config{})

		first, err := publisher.CreateRelease(context.Background(), semver.MustParse("1.2.0"), "notes")
		require.NoError(t, err)
		second, err := publisher.CreateRelease(context.Background(), semver.MustParse("1.2.0"), "notes")
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
		require.Len(t, forge.created, 1)
	})

	t.Run("marks pre-release versions", func(t *testing.T) {
		_, repo, _, _ := workspaceScene(t)
		forge := newMockForge()
		publisher := publish.NewPublisher(repo, forge, &config.Config{})

		_, err := publisher.CreateRelease(context.Background(), semver.MustParse("2.0.0-rc.1"), "")
		require.NoError(t, err)
		require.True(t, forge.created[0].Prerelease)
	})

	t.Run("fails without a forge client", func(t *testing.T) {
		_, repo, _, _ := workspaceScene(t)
		publisher := publish.NewPublisher(repo, nil, &config.Config{})

		_, err := publisher.CreateRelease(context.Background(), semver.MustParse("1.0.0"), "")
		require.Error(t, err)
	})
}

func TestReleaseNotes(t *testing.T) {
	t.Run("lists commits since the previous tag", func(t *testing.T) {
		scene, repo, _, _ := workspaceScene(t)
		require.NoError(t, scene.Repo.CreateTag("v1.0.0"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("one", "feat"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("two", "fix"))

		publisher := publish.NewPublisher(repo, nil, &config.Config{})

		notes, err := publisher.ReleaseNotes(context.Background(), "v1.0.0")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(notes), "\n")
		require.Len(t, lines, 2)
		require.True(t, strings.HasPrefix(lines[0], "- "))
	})

	t.Run("falls back to recent commits without a previous tag", func(t *testing.T) {
		_, repo, _, _ := workspaceScene(t)
		publisher := publish.NewPublisher(repo, nil, &config.Config{})

		notes, err := publisher.ReleaseNotes(context.Background(), "")
		require.NoError(t, err)
		require.NotEmpty(t, notes)
	})
}
