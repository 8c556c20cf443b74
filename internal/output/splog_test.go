package output_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"shipit.dev/shipit/internal/output"
)

func TestSplogQuiet(t *testing.T) {
	splog := output.NewSplog()
	require.False(t, splog.IsQuiet())

	splog.SetQuiet(true)
	require.True(t, splog.IsQuiet())

	// Quiet output is dropped, not an error
	splog.Info("hidden")
	splog.Newline()

	splog.SetQuiet(false)
	require.False(t, splog.IsQuiet())
}

func TestSplogFileLogging(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "shipit.log")

	splog, err := output.NewSplogWithFile(logPath)
	require.NoError(t, err)

	splog.SetQuiet(true)
	splog.Info("release started")
	splog.Debug("debug detail")
	require.NoError(t, splog.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	content := string(data)
	require.Contains(t, content, "release started")
	// File logs keep debug messages even without DEBUG set
	require.Contains(t, content, "debug detail")
}

func TestGetLogFilePath(t *testing.T) {
	t.Run("honors the env override", func(t *testing.T) {
		t.Setenv("SHIPIT_LOG_FILE", "/tmp/custom.log")
		require.Equal(t, "/tmp/custom.log", output.GetLogFilePath())
	})

	t.Run("defaults under the home directory", func(t *testing.T) {
		t.Setenv("SHIPIT_LOG_FILE", "")
		path := output.GetLogFilePath()
		require.True(t, strings.HasSuffix(path, filepath.Join(".shipit", "logs", "shipit.log")))
	})
}

func TestColorsInTests(t *testing.T) {
	// Test output is not a terminal, styling falls back to plain text
	require.Equal(t, "v1.2.3", output.ColorVersion("v1.2.3"))
	require.Equal(t, "ok", output.ColorSuccess("ok"))
	require.Equal(t, "careful", output.ColorWarning("careful"))
	require.Equal(t, "bad", output.ColorFailure("bad"))
	require.Equal(t, "none", output.ColorDim("none"))
	require.Equal(t, "example.com/widgets", output.ColorModule("example.com/widgets"))
}
