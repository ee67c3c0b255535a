package resource_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AndrewDonelson/stash/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) resource.Resolver {
	t.Helper()
	root := t.TempDir()
	return resource.Resolver{
		FilesDir: filepath.Join(root, "files"),
		CacheDir: filepath.Join(root, "cache"),
	}
}

func TestResolve_Persistent(t *testing.T) {
	rv := newResolver(t)
	res, err := rv.Resolve(resource.Persistent, "profile")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(rv.FilesDir, "localFileStorage", "profile"), res.Path)
	assert.Equal(t, res.Path+"_lock", res.LockPath())
	assert.Equal(t, res.Path+".bak", res.BackupPath())

	info, err := os.Stat(filepath.Dir(res.Path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolve_Cache(t *testing.T) {
	rv := newResolver(t)
	res, err := rv.Resolve(resource.Cache, "feed")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(rv.CacheDir, "localFileStorage", "feed"), res.Path)
	assert.Equal(t, resource.Cache, res.Tier)
}

func TestResolve_Deterministic(t *testing.T) {
	rv := newResolver(t)
	a, err := rv.Resolve(resource.Persistent, "k")
	require.NoError(t, err)
	b, err := rv.Resolve(resource.Persistent, "k")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolve_DoesNotTouchExistingFiles(t *testing.T) {
	rv := newResolver(t)
	res, err := rv.Resolve(resource.Persistent, "k")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(res.Path, []byte("keep"), 0o600))

	_, err = rv.Resolve(resource.Persistent, "k")
	require.NoError(t, err)
	b, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(b))
}

func TestResolve_InvalidNames(t *testing.T) {
	rv := newResolver(t)
	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "x_lock", "x.bak"} {
		_, err := rv.Resolve(resource.Persistent, name)
		assert.ErrorIs(t, err, resource.ErrInvalidName, "name %q", name)
	}
}

func TestResolve_MissingRoot(t *testing.T) {
	rv := resource.Resolver{FilesDir: t.TempDir()}
	_, err := rv.Resolve(resource.Cache, "k")
	assert.Error(t, err)
}

func TestParseTier(t *testing.T) {
	tier, err := resource.ParseTier("cache")
	require.NoError(t, err)
	assert.Equal(t, resource.Cache, tier)

	tier, err = resource.ParseTier("")
	require.NoError(t, err)
	assert.Equal(t, resource.Persistent, tier)
	assert.Equal(t, "persistent", tier.String())

	_, err = resource.ParseTier("cold")
	assert.Error(t, err)
}
