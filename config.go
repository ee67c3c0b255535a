// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// config.go — Config for stores, write modes, tier re-exports and the
// defaults applied before a store is opened.

package stash

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/AndrewDonelson/stash/internal/clock"
	"github.com/AndrewDonelson/stash/internal/metrics"
	"github.com/AndrewDonelson/stash/internal/resource"
)

// Re-export types so callers only import this package.
type (
	MetricsRecorder = metrics.MetricsRecorder
	Clock           = clock.Clock
	Tier            = resource.Tier
)

const (
	TierPersistent = resource.Persistent
	TierCache      = resource.Cache
)

// ParseTier parses "persistent" (or "files") and "cache".
func ParseTier(s string) (Tier, error) { return resource.ParseTier(s) }

// WriteMode controls when a Write reaches disk.
type WriteMode int

const (
	WriteThrough WriteMode = iota // Write returns after the file is synced
	WriteBehind                   // cache immediately, disk from a background flusher
)

func (m WriteMode) String() string {
	switch m {
	case WriteThrough:
		return "write-through"
	case WriteBehind:
		return "write-behind"
	default:
		return fmt.Sprintf("writemode(%d)", int(m))
	}
}

// Config contains everything a Store needs besides its name and codec.
// The zero value is usable.
type Config struct {
	// AppName names the per-application directory under the user config and
	// cache directories. Ignored when FilesDir/CacheDir are set.
	AppName string

	// Tier roots. Resources live in <root>/localFileStorage/<name>.
	FilesDir string
	CacheDir string

	// Tier selects the root for stores that do not override it.
	Tier Tier

	// Caching
	DisableMemoryCache bool

	// Write behaviour
	WriteMode             WriteMode
	WriteBehindMaxRetry   int
	WriteBehindRetryDelay time.Duration

	// NoSync skips fsync after a write.
	NoSync bool

	// FileMode is the permission of payload files.
	FileMode fs.FileMode

	// Optional overrideable components
	Logger  Logger
	Metrics metrics.MetricsRecorder
	Clock   clock.Clock
}

const defaultAppName = "stash"

func (c *Config) defaults() {
	if c.AppName == "" {
		c.AppName = defaultAppName
	}
	if c.FilesDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.FilesDir = filepath.Join(dir, c.AppName)
		}
	}
	if c.CacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			c.CacheDir = filepath.Join(dir, c.AppName)
		}
	}
	if c.WriteBehindMaxRetry == 0 {
		c.WriteBehindMaxRetry = 5
	}
	if c.WriteBehindRetryDelay == 0 {
		c.WriteBehindRetryDelay = 100 * time.Millisecond
	}
	if c.FileMode == 0 {
		c.FileMode = 0o600
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Noop{}
	}
	if c.Clock == nil {
		c.Clock = clock.Real{}
	}
}

func (c *Config) validate() error {
	switch {
	case c.WriteMode != WriteThrough && c.WriteMode != WriteBehind:
		return fmt.Errorf("%w: unknown write mode %d", ErrInvalidConfig, int(c.WriteMode))
	case c.WriteBehindMaxRetry < 0:
		return fmt.Errorf("%w: WriteBehindMaxRetry must not be negative", ErrInvalidConfig)
	case c.WriteBehindRetryDelay < 0:
		return fmt.Errorf("%w: WriteBehindRetryDelay must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) resolver() resource.Resolver {
	return resource.Resolver{FilesDir: c.FilesDir, CacheDir: c.CacheDir}
}

// Resolve returns the payload path of name in tier under cfg's roots,
// creating the localFileStorage directory if needed.
func Resolve(cfg Config, tier Tier, name string) (string, error) {
	cfg.defaults()
	res, err := resolve(&cfg, tier, name)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

func resolve(cfg *Config, tier Tier, name string) (resource.Resource, error) {
	if err := resource.ValidName(name); err != nil {
		return resource.Resource{}, fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	res, err := cfg.resolver().Resolve(tier, name)
	if err != nil {
		return resource.Resource{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return res, nil
}
