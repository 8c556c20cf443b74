package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"shipit.dev/shipit/internal/workspace"
)

func writeModule(t *testing.T, root, dir, modulePath string, requires ...string) {
	t.Helper()

	content := "module " + modulePath + "\n\ngo 1.25\n"
	if len(requires) > 0 {
		content += "\nrequire (\n"
		for _, req := range requires {
			content += "\t" + req + " v0.0.0\n"
		}
		content += ")\n"
	}

	path := filepath.Join(root, dir, "go.mod")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscover(t *testing.T) {
	t.Run("finds nested modules", func(t *testing.T) {
		root := t.TempDir()
		writeModule(t, root, ".", "example.com/widgets")
		writeModule(t, root, "api", "example.com/widgets/api")
		writeModule(t, root, "services/auth", "example.com/widgets/services/auth")

		ws, err := workspace.Discover(root)
		require.NoError(t, err)
		require.Len(t, ws.Modules, 3)

		rootMod := ws.RootModule()
		require.NotNil(t, rootMod)
		require.Equal(t, "example.com/widgets", rootMod.Path)
		require.Equal(t, ".", rootMod.Dir)

		api := ws.Modules["example.com/widgets/api"]
		require.NotNil(t, api)
		require.Equal(t, "api", api.Dir)
	})

	t.Run("skips vendor, testdata, and hidden directories", func(t *testing.T) {
		root := t.TempDir()
		writeModule(t, root, ".", "example.com/widgets")
		writeModule(t, root, "vendor/github.com/dep", "github.com/dep")
		writeModule(t, root, "testdata/fixture", "example.com/fixture")
		writeModule(t, root, ".hidden/mod", "example.com/hidden")

		ws, err := workspace.Discover(root)
		require.NoError(t, err)
		require.Len(t, ws.Modules, 1)
	})

	t.Run("resolves internal dependencies", func(t *testing.T) {
		root := t.TempDir()
		writeModule(t, root, ".", "example.com/widgets")
		writeModule(t, root, "api", "example.com/widgets/api",
			"example.com/widgets", "github.com/stretchr/testify")

		ws, err := workspace.Discover(root)
		require.NoError(t, err)

		api := ws.Modules["example.com/widgets/api"]
		require.Equal(t, []string{"example.com/widgets"}, api.InternalDeps)
		require.Len(t, api.Requires, 2)
	})

	t.Run("errors without any go.mod", func(t *testing.T) {
		_, err := workspace.Discover(t.TempDir())
		require.Error(t, err)
	})

	t.Run("errors on duplicate module paths", func(t *testing.T) {
		root := t.TempDir()
		writeModule(t, root, "a", "example.com/dup")
		writeModule(t, root, "b", "example.com/dup")

		_, err := workspace.Discover(root)
		require.Error(t, err)
		require.Contains(t, err.Error(), "example.com/dup")
	})
}

func TestTiers(t *testing.T) {
	t.Run("orders modules by dependency depth", func(t *testing.T) {
		root := t.TempDir()
		writeModule(t, root, ".", "example.com/widgets")
		writeModule(t, root, "core", "example.com/widgets/core")
		writeModule(t, root, "api", "example.com/widgets/api", "example.com/widgets/core")
		writeModule(t, root, "cli", "example.com/widgets/cli",
			"example.com/widgets/core", "example.com/widgets/api")

		ws, err := workspace.Discover(root)
		require.NoError(t, err)

		tiers, err := ws.Tiers()
		require.NoError(t, err)
		require.Len(t, tiers, 3)

		// Tier 0 holds the modules without internal deps, sorted
		require.Len(t, tiers[0], 2)
		require.Equal(t, "example.com/widgets", tiers[0][0].Path)
		require.Equal(t, "example.com/widgets/core", tiers[0][1].Path)

		require.Len(t, tiers[1], 1)
		require.Equal(t, "example.com/widgets/api", tiers[1][0].Path)

		require.Len(t, tiers[2], 1)
		require.Equal(t, "example.com/widgets/cli", tiers[2][0].Path)
	})

	t.Run("reports cycles with their members", func(t *testing.T) {
		root := t.TempDir()
		writeModule(t, root, "a", "example.com/a", "example.com/b")
		writeModule(t, root, "b", "example.com/b", "example.com/a")

		ws, err := workspace.Discover(root)
		require.NoError(t, err)

		_, err = ws.Tiers()
		require.Error(t, err)

		var cycle *workspace.CycleError
		require.ErrorAs(t, err, &cycle)
		require.Equal(t, []string{"example.com/a", "example.com/b"}, cycle.Members)
	})
}

func TestPublishOrder(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "core", "example.com/core")
	writeModule(t, root, "api", "example.com/api", "example.com/core")

	ws, err := workspace.Discover(root)
	require.NoError(t, err)

	order, err := ws.PublishOrder()
	require.NoError(t, err)
	require.Len(t, order, 2)
	require.Equal(t, "example.com/core", order[0].Path)
	require.Equal(t, "example.com/api", order[1].Path)
}
