// Package cache implements the on-disk executable cache. Each entry is a
// directory named by the caret-encoded locator and holds exactly one file,
// the cached builder executable.
package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kstenerud/builder-go/internal/logging"
	"github.com/kstenerud/builder-go/internal/paths"
)

// Manager owns the executable cache directory tree.
type Manager struct {
	paths  *paths.Paths
	logger logging.Logger
	clock  Clock
}

// NewManager creates a cache manager and ensures the cache root exists.
// Failure to create the root is fatal: nothing can proceed without it.
func NewManager(p *paths.Paths, logger logging.Logger, clock Clock) (*Manager, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if clock == nil {
		clock = RealClock{}
	}

	if err := os.MkdirAll(p.ExecutablesDir(), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	return &Manager{
		paths:  p,
		logger: logger,
		clock:  clock,
	}, nil
}

// IsCached reports whether a cached executable exists for the locator.
func (m *Manager) IsCached(locator string) bool {
	info, err := os.Stat(m.paths.ExecutablePath(locator))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// ExecutablePath returns the cache location of the locator's executable.
// The file may or may not exist; see IsCached.
func (m *Manager) ExecutablePath(locator string) string {
	return m.paths.ExecutablePath(locator)
}

// Store copies the built executable into the cache entry for the locator.
// Idempotent: an already-cached locator is reported and left untouched.
// The copy lands in a temporary file first and is published with a rename,
// so a concurrent reader never observes a partially written executable.
func (m *Manager) Store(sourcePath, locator string) error {
	if m.IsCached(locator) {
		m.logger.Info("builder already cached", "url", locator)
		return nil
	}

	target := m.paths.ExecutablePath(locator)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create cache entry directory: %w", err)
	}

	m.logger.Info("caching builder executable", "path", target)

	tmpPath := target + ".tmp"
	if err := copyFile(sourcePath, tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Chmod(tmpPath, 0755); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("set executable permissions: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publish cached executable: %w", err)
	}

	return nil
}

// PruneOlderThan removes every cache entry whose executable's age is at
// least maxAge, and returns the number of entries removed. A zero maxAge
// therefore clears the whole cache. Per-entry failures are logged and
// skipped; pruning always visits every entry.
func (m *Manager) PruneOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(m.paths.ExecutablesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cache directory: %w", err)
	}

	m.logger.Info("pruning cache entries", "max_age", maxAge.String())

	removed := 0
	now := m.clock.Now()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		entryDir := filepath.Join(m.paths.ExecutablesDir(), entry.Name())
		executable := filepath.Join(entryDir, paths.ExecutableName)

		info, err := os.Stat(executable)
		if err != nil {
			if !os.IsNotExist(err) {
				m.logger.Warn("cannot inspect cache entry", "entry", entry.Name(), "error", err)
			}
			continue
		}

		stamp := entryTimestamp(info, now)
		age := now.Sub(stamp)

		if age >= maxAge {
			m.logger.Info("removing old cache entry", "entry", entry.Name(), "age", formatAge(age))
			if err := os.RemoveAll(entryDir); err != nil {
				m.logger.Warn("cannot remove cache entry", "entry", entry.Name(), "error", err)
				continue
			}
			removed++
		} else {
			m.logger.Info("keeping cache entry", "entry", entry.Name(), "age", formatAge(age))
		}
	}

	return removed, nil
}

// PruneEntry removes the cache entry for a single locator. It returns the
// number of entries removed: 0 when the entry is absent, not a directory,
// or missing its executable.
func (m *Manager) PruneEntry(locator string) (int, error) {
	m.logger.Info("removing cache entry", "url", locator)

	entryDir := m.paths.EntryDir(locator)

	info, err := os.Stat(entryDir)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Info("no cache entry found", "url", locator)
			return 0, nil
		}
		return 0, fmt.Errorf("inspect cache entry: %w", err)
	}

	if !info.IsDir() {
		m.logger.Warn("cache entry is not a directory", "path", entryDir)
		return 0, nil
	}

	if _, err := os.Stat(filepath.Join(entryDir, paths.ExecutableName)); err != nil {
		m.logger.Warn("no builder executable in cache entry", "path", entryDir)
		return 0, nil
	}

	if err := os.RemoveAll(entryDir); err != nil {
		return 0, fmt.Errorf("remove cache entry: %w", err)
	}

	return 1, nil
}

// formatAge renders a duration the way the prune log reports entry ages.
func formatAge(age time.Duration) string {
	switch {
	case age >= 24*time.Hour:
		return fmt.Sprintf("%dd", int(age.Hours())/24)
	case age >= time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	case age >= time.Minute:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	default:
		return fmt.Sprintf("%ds", int(age.Seconds()))
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source executable: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy executable: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	return nil
}
