// Package lockfile takes blocking, exclusive advisory locks on marker files.
//
// The lock is tied to the open file, so two handles on the same path from one
// process exclude each other just like handles from different processes.
// Acquire has no timeout.
package lockfile

import (
	"fmt"
	"os"
)

// Lock is a held lock. Release it exactly once.
type Lock struct {
	f *os.File
}

// Acquire opens (creating if necessary) the file at path and blocks until an
// exclusive lock on it is held. The file is never written.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("lockfile: open %s: %w", path, err)
	}
	if err := lock(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("lockfile: lock %s: %w", path, err)
	}
	return &Lock{f: f}, nil
}

// Release unlocks and closes the lock file.
func (l *Lock) Release() error {
	uerr := unlock(l.f)
	cerr := l.f.Close()
	if uerr != nil {
		return fmt.Errorf("lockfile: unlock %s: %w", l.f.Name(), uerr)
	}
	return cerr
}
