package launcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const staleLockThreshold = 10 * time.Minute

// ErrBuildInProgress is returned when another process already holds the
// build lock for the same locator.
var ErrBuildInProgress = errors.New("another build for this builder is already in progress")

// buildLock serializes builds of one locator across processes. The lock
// file lives next to the cache entry, named after the encoded locator.
type buildLock struct {
	path string
	file *os.File
}

// acquireBuildLock attempts to take the per-locator build lock.
// Uses O_CREATE|O_EXCL for atomic lock creation.
func acquireBuildLock(dir, encodedLocator string) (*buildLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, encodedLocator+".lock")

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		// Lock exists - check whether its holder is long gone.
		if !isLockStale(lockPath) {
			return nil, ErrBuildInProgress
		}
		os.Remove(lockPath)
		file, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
		if err != nil {
			return nil, ErrBuildInProgress
		}
	}

	lockData := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(lockData); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock data: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("sync lock file: %w", err)
	}

	return &buildLock{
		path: lockPath,
		file: file,
	}, nil
}

// release releases the lock.
func (l *buildLock) release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.path != "" {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
	}
	return nil
}

func isLockStale(lockPath string) bool {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) > staleLockThreshold
}
