// Package launcher ties together trust checking, source acquisition,
// building and caching, and runs the cached builder executable.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kstenerud/builder-go/internal/buildtool"
	"github.com/kstenerud/builder-go/internal/cache"
	"github.com/kstenerud/builder-go/internal/fetch"
	"github.com/kstenerud/builder-go/internal/logging"
	"github.com/kstenerud/builder-go/internal/paths"
	"github.com/kstenerud/builder-go/internal/trust"
)

// Config configures a Launcher.
type Config struct {
	Paths   *paths.Paths
	Trust   *trust.Store
	Cache   *cache.Manager
	Fetcher *fetch.Fetcher
	Builder *buildtool.Builder
	Logger  logging.Logger

	// ScratchRoot is the directory under which per-build scratch
	// directories are created. Defaults to os.TempDir().
	ScratchRoot string
}

// Launcher acquires, builds, caches and runs builder executables.
type Launcher struct {
	paths       *paths.Paths
	trust       *trust.Store
	cache       *cache.Manager
	fetcher     *fetch.Fetcher
	builder     *buildtool.Builder
	logger      logging.Logger
	scratchRoot string
}

// New creates a Launcher from the given configuration.
func New(cfg Config) (*Launcher, error) {
	if cfg.Paths == nil {
		return nil, errors.New("paths is required")
	}
	if cfg.Trust == nil {
		return nil, errors.New("trust store is required")
	}
	if cfg.Cache == nil {
		return nil, errors.New("cache manager is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = fetch.NewFetcher(cfg.Logger)
	}
	if cfg.Builder == nil {
		cfg.Builder = buildtool.NewBuilder(nil, cfg.Logger)
	}
	if cfg.ScratchRoot == "" {
		cfg.ScratchRoot = os.TempDir()
	}

	return &Launcher{
		paths:       cfg.Paths,
		trust:       cfg.Trust,
		cache:       cfg.Cache,
		fetcher:     cfg.Fetcher,
		builder:     cfg.Builder,
		logger:      cfg.Logger,
		scratchRoot: cfg.ScratchRoot,
	}, nil
}

// EnsureAvailable makes sure a built executable for locator exists in the
// cache, acquiring and building the source if necessary. The locator must
// come from a trusted domain.
func (l *Launcher) EnsureAvailable(ctx context.Context, locator string) error {
	if err := l.trust.Validate(locator); err != nil {
		return err
	}

	if l.cache.IsCached(locator) {
		l.logger.Debug("using cached builder", "locator", locator)
		return nil
	}

	lock, err := acquireBuildLock(l.paths.ExecutablesDir(), paths.CaretEncode(locator))
	if err != nil {
		return err
	}
	defer lock.release()

	// Another process may have finished the build while we waited for
	// the lock file to become available.
	if l.cache.IsCached(locator) {
		return nil
	}

	scratchDir := filepath.Join(l.scratchRoot, "builder-build-"+uuid.NewString())
	if err := os.MkdirAll(scratchDir, 0700); err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratchDir)

	l.logger.Info("acquiring builder source", "locator", locator)
	if err := l.fetcher.Fetch(ctx, locator, scratchDir); err != nil {
		return fmt.Errorf("acquire source for %q: %w", locator, err)
	}

	executable, err := l.builder.Build(ctx, scratchDir)
	if err != nil {
		return fmt.Errorf("build %q: %w", locator, err)
	}

	if err := l.cache.Store(executable, locator); err != nil {
		return fmt.Errorf("cache executable for %q: %w", locator, err)
	}

	l.logger.Info("builder ready", "locator", locator)
	return nil
}

// Run ensures the builder for locator is available, then executes it with
// the given arguments and inherited standard streams. It returns the
// child's exit code, or 1 if the builder could not be made available or
// could not be started.
func (l *Launcher) Run(ctx context.Context, locator string, args []string) int {
	if err := l.EnsureAvailable(ctx, locator); err != nil {
		l.logger.Error("builder unavailable", "locator", locator, "error", err)
		fmt.Fprintf(os.Stderr, "builder: %v\n", err)
		return 1
	}

	executable := l.cache.ExecutablePath(locator)

	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	l.logger.Error("cannot run builder", "executable", executable, "error", err)
	fmt.Fprintf(os.Stderr, "builder: cannot run %s: %v\n", executable, err)
	return 1
}
