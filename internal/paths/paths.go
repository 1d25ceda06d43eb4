// Package paths centralizes every filesystem location decision for the
// builder launcher. All components receive a *Paths instead of consulting
// the environment or the working directory themselves.
package paths

import (
	"fmt"
	"path/filepath"
)

const (
	// ExecutableName is the fixed file name of a cached builder executable.
	ExecutableName = "builder"
	// ConfigFileName is the per-project configuration file name.
	ConfigFileName = "builder.yaml"
	// TrustFileName is the persisted trust-list file name.
	TrustFileName = "trusted_urls"
)

// Paths holds the two roots everything else derives from.
type Paths struct {
	home        string
	projectRoot string
}

// New creates a Paths rooted at the given home directory and project root.
func New(home, projectRoot string) (*Paths, error) {
	if home == "" {
		return nil, fmt.Errorf("home directory is required")
	}
	if projectRoot == "" {
		return nil, fmt.Errorf("project root is required")
	}

	return &Paths{
		home:        home,
		projectRoot: projectRoot,
	}, nil
}

// CacheDir returns the root cache directory.
func (p *Paths) CacheDir() string {
	return filepath.Join(p.home, ".cache", "builder")
}

// ExecutablesDir returns the directory holding one entry per encoded locator.
func (p *Paths) ExecutablesDir() string {
	return filepath.Join(p.CacheDir(), "executables")
}

// ConfigDir returns the configuration directory.
func (p *Paths) ConfigDir() string {
	return filepath.Join(p.home, ".config", "builder")
}

// TrustFile returns the path of the persisted trust list.
func (p *Paths) TrustFile() string {
	return filepath.Join(p.ConfigDir(), TrustFileName)
}

// ProjectConfigFile returns the project's builder.yaml path.
func (p *Paths) ProjectConfigFile() string {
	return filepath.Join(p.projectRoot, ConfigFileName)
}

// EntryDir returns the cache entry directory for a locator.
func (p *Paths) EntryDir(locator string) string {
	return filepath.Join(p.ExecutablesDir(), CaretEncode(locator))
}

// ExecutablePath returns the cached executable path for a locator.
func (p *Paths) ExecutablePath(locator string) string {
	return filepath.Join(p.EntryDir(locator), ExecutableName)
}
