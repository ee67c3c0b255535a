package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AndrewDonelson/stash"
	"github.com/AndrewDonelson/stash/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(t *testing.T) (string, stash.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := stash.Config{
		FilesDir: filepath.Join(dir, "files"),
		CacheDir: filepath.Join(dir, "cache"),
		NoSync:   true,
	}
	body := fmt.Sprintf("files_dir: %q\ncache_dir: %q\n", cfg.FilesDir, cfg.CacheDir)
	path := filepath.Join(dir, "stash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path, cfg
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, stash.Version()+"\n", out)
}

func TestRun_VersionVerbose(t *testing.T) {
	code, out, _ := runCLI(t, "version", "-v")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "version:  "+stash.Version())
	assert.Contains(t, out, "go:       "+stash.ReadBuildInfo().GoVersion)
}

func TestRun_Usage(t *testing.T) {
	code, _, errOut := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "usage: stash")

	cfgPath, _ := testSettings(t)
	code, _, errOut = runCLI(t, "-config", cfgPath, "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, `unknown command "frobnicate"`)
}

func TestRun_Path(t *testing.T) {
	cfgPath, cfg := testSettings(t)

	code, out, _ := runCLI(t, "-config", cfgPath, "path", "settings")
	require.Equal(t, 0, code)
	assert.Equal(t, filepath.Join(cfg.FilesDir, "localFileStorage", "settings"), strings.TrimSpace(out))

	code, out, _ = runCLI(t, "-config", cfgPath, "path", "-tier", "cache", "settings")
	require.Equal(t, 0, code)
	assert.Equal(t, filepath.Join(cfg.CacheDir, "localFileStorage", "settings"), strings.TrimSpace(out))
}

func TestRun_PathErrors(t *testing.T) {
	cfgPath, _ := testSettings(t)

	code, _, errOut := runCLI(t, "-config", cfgPath, "path", "../etc")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid resource name")

	code, _, errOut = runCLI(t, "-config", cfgPath, "path", "-tier", "tape", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown tier")

	code, _, errOut = runCLI(t, "-config", cfgPath, "path")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "expected exactly one resource name")
}

func TestRun_InspectAndRemove(t *testing.T) {
	cfgPath, cfg := testSettings(t)
	c := codec.Stack(codec.String()).Expiring(0).Versioned(12).MustBuild()
	s, err := stash.NewStore(cfg, "token", c)
	require.NoError(t, err)
	require.NoError(t, s.Write("abcd"))
	require.NoError(t, s.Close())

	code, out, errOut := runCLI(t, "-config", cfgPath, "inspect", "-versioned", "-expiring", "token")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "size:     20 bytes")
	assert.Contains(t, out, "backup:   false")
	assert.Contains(t, out, "version:  12")
	assert.Contains(t, out, "written:  ")
	assert.Contains(t, out, "payload:  4 bytes")

	code, out, _ = runCLI(t, "-config", cfgPath, "rm", "token")
	require.Equal(t, 0, code)
	assert.Equal(t, "removed token\n", out)
	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))

	code, out, _ = runCLI(t, "-config", cfgPath, "inspect", "token")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "state:    absent")
}

func TestRun_InspectShortHeader(t *testing.T) {
	cfgPath, cfg := testSettings(t)
	path, err := stash.Resolve(cfg, stash.TierPersistent, "short")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o600))

	code, _, errOut := runCLI(t, "-config", cfgPath, "inspect", "-versioned", "short")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "version header")
}

func TestRun_BadConfig(t *testing.T) {
	code, _, errOut := runCLI(t, "-config", filepath.Join(t.TempDir(), "nope.yaml"), "path", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "read config")
}
