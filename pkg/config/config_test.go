package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, `[log]
level = "debug"
file = "/tmp/boxdiff.log"

[render]
debug_log = "render.jsonl"
interval = "250ms"

[terminal]
columns = 100
rows = 30
`)

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "/tmp/boxdiff.log", config.Log.File)
	assert.Equal(t, "render.jsonl", config.Render.DebugLog)
	assert.Equal(t, 250*time.Millisecond, config.Render.Interval)
	assert.Equal(t, 100, config.Terminal.Columns)
	assert.Equal(t, 30, config.Terminal.Rows)
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, "[terminal]\ncolumns = 90\n")

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, time.Second, config.Render.Interval)
	assert.Equal(t, 90, config.Terminal.Columns)
}

func TestLoadErrors(t *testing.T) {
	t.Run("syntax", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		writeFile(t, path, "[log\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing "+path)
	})

	t.Run("negative interval", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		writeFile(t, path, "[render]\ninterval = \"-1s\"\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "render.interval")
	})
}

func TestFind(t *testing.T) {
	t.Run("walks up to parent", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, FileName), "[log]\nlevel = \"warn\"\n")
		nested := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0755))

		path, config, err := Find(nested)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, FileName), path)
		assert.Equal(t, "warn", config.Log.Level)
	})

	t.Run("stops at .git", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, FileName), "[log]\nlevel = \"warn\"\n")
		repo := filepath.Join(root, "repo")
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0755))
		nested := filepath.Join(repo, "src")
		require.NoError(t, os.MkdirAll(nested, 0755))

		path, config, err := Find(nested)
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Nil(t, config)
	})

	t.Run("finds file next to .git", func(t *testing.T) {
		repo := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0755))
		writeFile(t, filepath.Join(repo, FileName), "")

		path, config, err := Find(repo)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(repo, FileName), path)
		assert.NotNil(t, config)
	})

	t.Run("propagates parse errors", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FileName), "not toml at all = = =")
		_, _, err := Find(dir)
		require.Error(t, err)
	})
}

func TestSlogLevel(t *testing.T) {
	for _, example := range []struct {
		level string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	} {
		t.Run(example.level, func(t *testing.T) {
			level, err := LogConfig{Level: example.level}.SlogLevel()
			require.NoError(t, err)
			assert.Equal(t, example.want, level)
		})
	}

	_, err := LogConfig{Level: "loud"}.SlogLevel()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"loud"`)
}
