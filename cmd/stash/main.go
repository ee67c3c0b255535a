// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// main.go — stash CLI entry point and subcommands: path, inspect, rm and
// version.

// Command stash inspects and manages resources written by stash stores.
//
//	stash [-config FILE] path    [-tier persistent|cache] NAME
//	stash [-config FILE] inspect [-tier ...] [-versioned] [-expiring] NAME
//	stash [-config FILE] rm      [-tier ...] NAME
//	stash version [-v]
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/AndrewDonelson/stash"
	"github.com/AndrewDonelson/stash/codec"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

const usage = `usage: stash [-config FILE] <command> [flags] NAME

commands:
  path     print the payload path of NAME
  inspect  print the size, backup state and envelope headers of NAME
  rm       delete the payload, backup and lock files of NAME
  version  print the build version (-v for toolchain details)
`

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("stash", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "configuration file (YAML, or TOML with a .toml extension); defaults to $"+EnvConfig)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	if cmd == "version" {
		return versionCmd(rest, stdout, stderr)
	}

	settings, err := LoadSettings(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "stash:", err)
		return 1
	}
	cfg := settings.Config(stderr)

	switch cmd {
	case "path":
		err = cmdPath(cfg, rest, stdout, stderr)
	case "inspect":
		err = cmdInspect(cfg, rest, stdout, stderr)
	case "rm":
		err = cmdRemove(cfg, rest, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "stash: unknown command %q\n", cmd)
		global.Usage()
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "stash:", err)
		return 1
	}
	return 0
}

// resourceFlags parses the per-command flags shared by every command and
// returns the tier and the single NAME argument.
func resourceFlags(set *flag.FlagSet, args []string) (stash.Tier, string, error) {
	tierName := set.String("tier", "persistent", "storage tier: persistent or cache")
	if err := set.Parse(args); err != nil {
		return 0, "", err
	}
	if set.NArg() != 1 {
		return 0, "", fmt.Errorf("%s: expected exactly one resource name", set.Name())
	}
	tier, err := stash.ParseTier(*tierName)
	if err != nil {
		return 0, "", err
	}
	return tier, set.Arg(0), nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	set.SetOutput(stderr)
	return set
}

func cmdPath(cfg stash.Config, args []string, stdout, stderr io.Writer) error {
	tier, name, err := resourceFlags(newFlagSet("path", stderr), args)
	if err != nil {
		return err
	}
	path, err := stash.Resolve(cfg, tier, name)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, path)
	return nil
}

func cmdRemove(cfg stash.Config, args []string, stdout, stderr io.Writer) error {
	tier, name, err := resourceFlags(newFlagSet("rm", stderr), args)
	if err != nil {
		return err
	}
	if err := stash.Remove(cfg, tier, name); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "removed %s\n", name)
	return nil
}

func cmdInspect(cfg stash.Config, args []string, stdout, stderr io.Writer) error {
	set := newFlagSet("inspect", stderr)
	versioned := set.Bool("versioned", false, "payload starts with a version tag")
	expiring := set.Bool("expiring", false, "payload carries a write timestamp (after the version tag, if any)")
	tier, name, err := resourceFlags(set, args)
	if err != nil {
		return err
	}

	info, err := stash.Inspect(cfg, tier, name)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stdout, "path:     %s\nstate:    absent\n", info.Path)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "path:     %s\n", info.Path)
	fmt.Fprintf(stdout, "size:     %d bytes\n", info.Size)
	fmt.Fprintf(stdout, "modified: %s\n", info.ModTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(stdout, "backup:   %t\n", info.HasBackup)

	r := bytes.NewReader(info.Data)
	if *versioned {
		tag, err := codec.ReadUint64(r)
		if err != nil {
			return fmt.Errorf("version header: %w", err)
		}
		fmt.Fprintf(stdout, "version:  %d\n", tag)
	}
	if *expiring {
		ms, err := codec.ReadUint64(r)
		if err != nil {
			return fmt.Errorf("expiration header: %w", err)
		}
		written := time.UnixMilli(int64(ms)).UTC()
		fmt.Fprintf(stdout, "written:  %s (age %s)\n", written.Format(time.RFC3339Nano),
			time.Since(written).Truncate(time.Millisecond))
	}
	fmt.Fprintf(stdout, "payload:  %d bytes\n", r.Len())
	return nil
}

func versionCmd(args []string, stdout, stderr io.Writer) int {
	set := flag.NewFlagSet("version", flag.ContinueOnError)
	set.SetOutput(stderr)
	verbose := set.Bool("v", false, "also print module and Go toolchain versions")
	if err := set.Parse(args); err != nil {
		return 2
	}
	if !*verbose {
		fmt.Fprintln(stdout, stash.Version())
		return 0
	}
	bi := stash.ReadBuildInfo()
	fmt.Fprintf(stdout, "version:  %s\n", bi.Version)
	fmt.Fprintf(stdout, "module:   %s\n", bi.Module)
	fmt.Fprintf(stdout, "go:       %s\n", bi.GoVersion)
	return 0
}
