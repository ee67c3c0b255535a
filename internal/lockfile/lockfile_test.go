//go:build unix || windows

package lockfile_test

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AndrewDonelson/stash/internal/lockfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_CreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "k_lock")
	l, err := lockfile.Acquire(path)
	require.NoError(t, err)
	require.NoError(t, l.Release())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestAcquire_ExcludesSecondHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "k_lock")
	first, err := lockfile.Acquire(path)
	require.NoError(t, err)

	var acquired atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		second, err := lockfile.Acquire(path)
		if err != nil {
			return
		}
		acquired.Store(true)
		_ = second.Release()
	}()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, acquired.Load(), "second handle must block while the first holds the lock")

	require.NoError(t, first.Release())
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("second handle never acquired the lock")
	}
	assert.True(t, acquired.Load())
}

func TestAcquire_BadDirectory(t *testing.T) {
	_, err := lockfile.Acquire(filepath.Join(t.TempDir(), "missing", "k_lock"))
	assert.Error(t, err)
}
