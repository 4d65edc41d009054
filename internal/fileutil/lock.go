package fileutil

import (
	"errors"
	"fmt"
	"os"
)

// ErrLocked is returned when another process holds a conflicting advisory lock.
var ErrLocked = errors.New("file is locked by another process")

// Lock is an advisory whole-file lock held on an open file.
type Lock struct {
	file     *os.File
	released bool
}

// LockShared takes a non-blocking shared (read) lock on f.
func LockShared(f *os.File) (*Lock, error) {
	return acquire(f, false)
}

// LockExclusive takes a non-blocking exclusive (write) lock on f.
func LockExclusive(f *os.File) (*Lock, error) {
	return acquire(f, true)
}

func acquire(f *os.File, exclusive bool) (*Lock, error) {
	if err := lockFile(f, exclusive); err != nil {
		return nil, fmt.Errorf("locking %q: %w", f.Name(), err)
	}

	return &Lock{file: f}, nil
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.released {
		return nil
	}

	l.released = true

	if err := unlockFile(l.file); err != nil {
		return fmt.Errorf("unlocking %q: %w", l.file.Name(), err)
	}

	return nil
}
