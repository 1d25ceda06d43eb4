// Package buildtool turns acquired builder source into an executable by
// invoking the external Rust toolchain.
package buildtool

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kstenerud/builder-go/internal/logging"
	"github.com/kstenerud/builder-go/internal/paths"
)

// ManifestName is the build manifest that marks a project root.
const ManifestName = "Cargo.toml"

// ErrNoProject is returned when no build manifest exists anywhere under
// the source tree.
var ErrNoProject = errors.New("no Rust project (Cargo.toml) found in source")

// Builder locates and builds the builder project inside acquired source.
type Builder struct {
	runner Runner
	logger logging.Logger
}

// NewBuilder creates a project builder. A nil runner falls back to the
// exec-backed runner; a nil logger to the no-op logger.
func NewBuilder(runner Runner, logger logging.Logger) *Builder {
	if runner == nil {
		runner = NewExecRunner()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Builder{
		runner: runner,
		logger: logger,
	}
}

// FindProjectRoot walks the tree under searchDir and returns the first
// directory containing the build manifest.
func FindProjectRoot(searchDir string) (string, bool) {
	var root string

	filepath.WalkDir(searchDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtrees are simply not matches
		}
		if !d.IsDir() && d.Name() == ManifestName {
			root = filepath.Dir(path)
			return filepath.SkipAll
		}
		return nil
	})

	return root, root != ""
}

// Build locates the project root under searchDir, runs a release build
// in it, and returns the path of the produced executable.
func (b *Builder) Build(ctx context.Context, searchDir string) (string, error) {
	root, ok := FindProjectRoot(searchDir)
	if !ok {
		return "", ErrNoProject
	}

	b.logger.Info("building Rust project", "dir", root)

	out, err := b.runner.Run(ctx, root, "cargo", "build", "--release")
	if err != nil {
		return "", fmt.Errorf("build Rust project: %w\n%s", err, out)
	}

	executable := filepath.Join(root, "target", "release", paths.ExecutableName)
	if info, err := os.Stat(executable); err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("built executable not found at: %s", executable)
	}

	return executable, nil
}
