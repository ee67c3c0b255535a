package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSettings_YAML(t *testing.T) {
	path := writeFile(t, "stash.yaml", `
app_name: notes
files_dir: /srv/notes/files
cache_dir: /srv/notes/cache
log:
  level: debug
  format: json
`)
	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "notes", s.AppName)
	assert.Equal(t, "/srv/notes/files", s.FilesDir)
	assert.Equal(t, "/srv/notes/cache", s.CacheDir)
	assert.Equal(t, LogSettings{Level: "debug", Format: "json"}, s.Log)
}

func TestLoadSettings_TOML(t *testing.T) {
	path := writeFile(t, "stash.toml", `
app_name = "notes"
files_dir = "/srv/notes/files"

[log]
level = "error"
`)
	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "notes", s.AppName)
	assert.Equal(t, "/srv/notes/files", s.FilesDir)
	assert.Equal(t, "error", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format)
}

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "warn", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format)
}

func TestLoadSettings_EnvConfigAndOverrides(t *testing.T) {
	path := writeFile(t, "stash.yaml", "files_dir: /from/file\n")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvFilesDir, "/from/env")
	t.Setenv(EnvLogLevel, "info")

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "/from/env", s.FilesDir)
	assert.Equal(t, "info", s.Log.Level)
}

func TestLoadSettings_Errors(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	_, err = LoadSettings(writeFile(t, "bad.yaml", "log: [unterminated"))
	assert.ErrorContains(t, err, "parse config")

	_, err = LoadSettings(writeFile(t, "level.yaml", "log:\n  level: loud\n"))
	assert.ErrorContains(t, err, "invalid log level")

	_, err = LoadSettings(writeFile(t, "format.toml", "[log]\nformat = \"xml\"\n"))
	assert.ErrorContains(t, err, "invalid log format")
}
