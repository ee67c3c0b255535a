//go:build !unix && !windows

package lockfile

import "os"

// Platforms without advisory locks only get the in-process exclusion the
// store's own mutexes provide.
func lock(*os.File) error   { return nil }
func unlock(*os.File) error { return nil }
