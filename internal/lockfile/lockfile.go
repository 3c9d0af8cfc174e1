// Package lockfile provides a cross-process mutual exclusion lock backed
// by flock(2) on a dedicated lock file. Two processes (or two lockers in
// one process) locking the same path exclude each other; the kernel
// releases the lock automatically if the holder dies.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

// filePermissions matches the standard config file permissions (owner rw, group/other r).
const filePermissions = 0o644

// dirPermissions matches the standard directory permissions (owner rwx, group/other rx).
const dirPermissions = 0o755

// Locker holds an exclusive flock on a file for the duration between
// Lock and Unlock. It satisfies the gate.Locker interface and is safe
// for concurrent use by multiple goroutines.
type Locker struct {
	path string

	mu sync.Mutex // guards f across concurrent Lock/Unlock callers
	f  *os.File
}

// New creates a locker for the given lock file path. The file is not
// touched until Lock is called.
func New(path string) *Locker {
	return &Locker{path: path}
}

// Lock opens (creating if needed) the lock file and blocks until an
// exclusive flock is acquired.
func (l *Locker) Lock() error {
	if l.path == "" {
		return fmt.Errorf("lockfile: path is empty")
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("lockfile: creating lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, filePermissions)
	if err != nil {
		return fmt.Errorf("lockfile: opening %s: %w", l.path, err)
	}

	// Blocking exclusive lock. flock conflicts are per open file
	// description, so this also blocks a second Lock from another
	// goroutine in the same process until the holder releases.
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()

		return fmt.Errorf("lockfile: locking %s: %w", l.path, err)
	}

	l.mu.Lock()
	l.f = f
	l.mu.Unlock()

	return nil
}

// Unlock releases the flock and closes the file. Calling Unlock without
// a held lock is an error.
func (l *Locker) Unlock() error {
	l.mu.Lock()
	f := l.f
	l.f = nil
	l.mu.Unlock()

	if f == nil {
		return fmt.Errorf("lockfile: unlock without lock")
	}

	err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	closeErr := f.Close()

	if err != nil {
		return fmt.Errorf("lockfile: unlocking %s: %w", l.path, err)
	}

	if closeErr != nil {
		return fmt.Errorf("lockfile: closing %s: %w", l.path, closeErr)
	}

	return nil
}
