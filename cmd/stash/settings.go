// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// settings.go — CLI settings loaded from a YAML or TOML file, overridden by
// STASH_* environment variables, then defaulted and validated.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AndrewDonelson/stash"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables read by the CLI.
const (
	EnvConfig    = "STASH_CONFIG"
	EnvFilesDir  = "STASH_FILES_DIR"
	EnvCacheDir  = "STASH_CACHE_DIR"
	EnvLogLevel  = "STASH_LOG_LEVEL"
	EnvLogFormat = "STASH_LOG_FORMAT"
)

// LogSettings selects the CLI's log level and format.
type LogSettings struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Settings is the CLI configuration file. YAML is the default; files ending
// in .toml are parsed as TOML.
type Settings struct {
	AppName  string      `yaml:"app_name" toml:"app_name"`
	FilesDir string      `yaml:"files_dir" toml:"files_dir"`
	CacheDir string      `yaml:"cache_dir" toml:"cache_dir"`
	Log      LogSettings `yaml:"log" toml:"log"`
}

// LoadSettings reads the file at path, or at $STASH_CONFIG when path is
// empty, then applies environment overrides and defaults. With neither set
// only the environment and defaults apply.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	s := &Settings{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := s.parse(path, data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := s.Finalize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) parse(path string, data []byte) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, s)
	}
	return yaml.Unmarshal(data, s)
}

// Finalize applies environment overrides and defaults, then validates.
func (s *Settings) Finalize() error {
	s.loadEnv()
	s.loadDefaults()
	return s.validate()
}

func (s *Settings) loadEnv() {
	if v := os.Getenv(EnvFilesDir); v != "" {
		s.FilesDir = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		s.CacheDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		s.Log.Format = v
	}
}

func (s *Settings) loadDefaults() {
	if s.Log.Level == "" {
		s.Log.Level = "warn"
	}
	if s.Log.Format == "" {
		s.Log.Format = "text"
	}
}

func (s *Settings) validate() error {
	switch strings.ToLower(s.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", s.Log.Level)
	}
	switch strings.ToLower(s.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", s.Log.Format)
	}
	return nil
}

// Config converts the settings to a store configuration logging to w.
func (s *Settings) Config(w io.Writer) stash.Config {
	return stash.Config{
		AppName:  s.AppName,
		FilesDir: s.FilesDir,
		CacheDir: s.CacheDir,
		Logger:   stash.NewLogger(w, stash.LogOptions{Level: s.Log.Level, Format: s.Log.Format}),
	}
}
