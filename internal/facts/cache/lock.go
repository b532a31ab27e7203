package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/vitaliisemenov/alert-history/internal/facts"
)

// LockGuard holds an advisory exclusive lock on the cache directory's
// lock file. Release must be called exactly once when the lock is no
// longer needed.
type LockGuard struct {
	file *os.File
	path string
}

// AcquireLock blocks until it can take an exclusive advisory lock on
// <cacheDir>/cache.lock, creating the lock file if necessary.
func AcquireLock(cacheDir string) (*LockGuard, error) {
	lockPath := filepath.Join(cacheDir, "cache.lock")

	f, err := os.OpenFile(lockPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening cache lock file %q: %v", facts.ErrIO, lockPath, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: acquiring exclusive lock on cache at %q: %v", facts.ErrIO, lockPath, err)
	}

	logger.Debug("acquired cache lock", "path", lockPath)
	return &LockGuard{file: f, path: lockPath}, nil
}

// Release unlocks and closes the lock file. Failures are logged, not
// returned: by the time callers release the lock they're shutting down
// and have no useful recourse on failure.
func (g *LockGuard) Release() {
	if err := unix.Flock(int(g.file.Fd()), unix.LOCK_UN); err != nil {
		logger.Warn("could not unlock cache", "path", g.path, "error", err)
	}
	if err := g.file.Close(); err != nil {
		logger.Warn("could not close cache lock file", "path", g.path, "error", err)
	}
}
