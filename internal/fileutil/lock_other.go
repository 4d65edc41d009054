//go:build !unix && !windows

package fileutil

import "os"

// Platforms without advisory locking proceed unlocked.
func lockFile(_ *os.File, _ bool) error { return nil }

func unlockFile(_ *os.File) error { return nil }
