// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// resource.go — maps a logical store name to its payload, lock and backup
// paths under the persistent or cache tier root.

// Package resource resolves logical resource names to filesystem paths.
package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirName is the subdirectory created under each tier root.
const DirName = "localFileStorage"

const (
	lockSuffix   = "_lock"
	backupSuffix = ".bak"
)

// ErrInvalidName is returned for names that cannot map to a single file.
var ErrInvalidName = errors.New("resource: invalid name")

// Tier selects the root directory a resource lives under.
type Tier int

const (
	Persistent Tier = iota // app-private files directory
	Cache                  // evictable cache directory
)

func (t Tier) String() string {
	switch t {
	case Persistent:
		return "persistent"
	case Cache:
		return "cache"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier parses the String form of a Tier.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(s) {
	case "", "persistent", "files":
		return Persistent, nil
	case "cache":
		return Cache, nil
	}
	return 0, fmt.Errorf("resource: unknown tier %q", s)
}

// Resource is a resolved resource.
type Resource struct {
	Name string
	Tier Tier
	Path string
}

// LockPath is the zero-length sibling used as the advisory lock target.
func (r Resource) LockPath() string { return r.Path + lockSuffix }

// BackupPath holds the last good payload while a write is in progress.
func (r Resource) BackupPath() string { return r.Path + backupSuffix }

// Resolver maps names to paths.
type Resolver struct {
	FilesDir string
	CacheDir string
	DirMode  fs.FileMode
}

// Dir returns the localFileStorage directory for tier without creating it.
func (rv Resolver) Dir(tier Tier) (string, error) {
	var root string
	switch tier {
	case Persistent:
		root = rv.FilesDir
	case Cache:
		root = rv.CacheDir
	default:
		return "", fmt.Errorf("resource: unknown tier %d", int(tier))
	}
	if root == "" {
		return "", fmt.Errorf("resource: no root directory for %s tier", tier)
	}
	return filepath.Join(root, DirName), nil
}

// Resolve returns the resource for name in tier, creating the parent
// directory if needed. It never removes anything.
func (rv Resolver) Resolve(tier Tier, name string) (Resource, error) {
	if err := ValidName(name); err != nil {
		return Resource{}, err
	}
	dir, err := rv.Dir(tier)
	if err != nil {
		return Resource{}, err
	}
	mode := rv.DirMode
	if mode == 0 {
		mode = 0o700
	}
	if err := os.MkdirAll(dir, mode); err != nil {
		return Resource{}, fmt.Errorf("resource: create %s: %w", dir, err)
	}
	return Resource{Name: name, Tier: tier, Path: filepath.Join(dir, name)}, nil
}

// ValidName reports whether name is usable as a single file name.
// Names may not end in the lock or backup suffix, which would collide with
// the siblings of another resource.
func ValidName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.HasSuffix(name, lockSuffix), strings.HasSuffix(name, backupSuffix):
		return fmt.Errorf("%w: %q uses a reserved suffix", ErrInvalidName, name)
	}
	return nil
}
