// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// file.go — locked disk operations on one resource: backup-then-write,
// interrupted-write recovery, removal and raw inspection.

package stash

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/AndrewDonelson/stash/codec"
	"github.com/AndrewDonelson/stash/internal/lockfile"
	"github.com/AndrewDonelson/stash/internal/resource"
)

// disk performs file operations on a single resource. Every exported path
// into it goes through withLock.
type disk struct {
	res    resource.Resource
	mode   fs.FileMode
	noSync bool

	// mu orders this process's handles before the OS lock is taken, so the
	// store stays exclusive on platforms without advisory locks.
	mu sync.Mutex
}

func newDisk(res resource.Resource, cfg *Config) *disk {
	return &disk{res: res, mode: cfg.FileMode, noSync: cfg.NoSync}
}

// withLock runs fn while holding the resource's lock file.
func (d *disk) withLock(fn func() error) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	lk, err := lockfile.Acquire(d.res.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if rerr := lk.Release(); err == nil {
			err = rerr
		}
	}()
	return fn()
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// restoreBackup replaces the payload with its backup if one survived an
// interrupted write.
func (d *disk) restoreBackup() (bool, error) {
	ok, err := exists(d.res.BackupPath())
	if err != nil || !ok {
		return false, err
	}
	if err := os.Rename(d.res.BackupPath(), d.res.Path); err != nil {
		return false, err
	}
	return true, nil
}

// save replaces the payload with the output of write. The previous payload
// is parked in the backup file until the new one is complete; a failed write
// removes the partial file and leaves the backup for the next read.
func (d *disk) save(write func(io.Writer) error) error {
	path, backup := d.res.Path, d.res.BackupPath()
	hasBackup, err := exists(backup)
	if err != nil {
		return err
	}
	if hasBackup {
		// The payload is from an interrupted write; the backup is the last
		// complete value.
		if err := removeIfExists(path); err != nil {
			return err
		}
	} else if err := os.Rename(path, backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, d.mode)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	err = write(bw)
	if err == nil {
		err = bw.Flush()
	}
	if err == nil && !d.noSync {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	return removeIfExists(backup)
}

// remove deletes the payload and any backup. The lock file stays.
func (d *disk) remove() error {
	return errors.Join(removeIfExists(d.res.Path), removeIfExists(d.res.BackupPath()))
}

// readFile decodes the payload at path. A missing file surfaces as
// fs.ErrNotExist; read failures keep their *fs.PathError.
func readFile[T any](path string, c codec.Codec[T]) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return c.Read(bufio.NewReader(f))
}

// isIOError reports whether err came from the filesystem rather than from
// decoding the bytes.
func isIOError(err error) bool {
	var pe *fs.PathError
	return errors.As(err, &pe)
}

// Remove deletes the payload, backup and lock files of name in tier, holding
// the lock while the payload is removed.
func Remove(cfg Config, tier Tier, name string) error {
	cfg.defaults()
	res, err := resolve(&cfg, tier, name)
	if err != nil {
		return err
	}
	d := newDisk(res, &cfg)
	if err := d.withLock(d.remove); err != nil {
		return fmt.Errorf("stash: remove %s: %w", name, err)
	}
	return removeIfExists(res.LockPath())
}

// FileInfo describes the on-disk state of a resource.
type FileInfo struct {
	Path      string
	Size      int64
	ModTime   time.Time
	HasBackup bool
	Data      []byte
}

// Inspect reads the raw payload of name in tier under its lock without
// decoding, recovering or deleting anything. A missing payload returns
// fs.ErrNotExist.
func Inspect(cfg Config, tier Tier, name string) (FileInfo, error) {
	cfg.defaults()
	res, err := resolve(&cfg, tier, name)
	if err != nil {
		return FileInfo{}, err
	}
	info := FileInfo{Path: res.Path}
	d := newDisk(res, &cfg)
	err = d.withLock(func() error {
		var err error
		if info.HasBackup, err = exists(res.BackupPath()); err != nil {
			return err
		}
		st, err := os.Stat(res.Path)
		if err != nil {
			return err
		}
		info.Size, info.ModTime = st.Size(), st.ModTime()
		info.Data, err = os.ReadFile(res.Path)
		return err
	})
	return info, err
}
