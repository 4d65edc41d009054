//go:build unix

package fileutil

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func lockFile(f *os.File, exclusive bool) error {
	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}

	for {
		err := unix.Flock(int(f.Fd()), how|unix.LOCK_NB) //nolint:gosec // fd fits in int
		if errors.Is(err, unix.EINTR) {
			continue
		}

		if errors.Is(err, unix.EWOULDBLOCK) {
			return ErrLocked
		}

		return err //nolint:wrapcheck
	}
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN) //nolint:gosec,wrapcheck
}
