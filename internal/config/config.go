// Package config loads the per-project builder configuration.
//
// A project declares which builder it uses in a builder.yaml file at the
// project root. The only field the launcher consumes is builder_binary,
// the source locator for the builder executable.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = errors.New("project configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Project is the parsed project configuration.
type Project struct {
	// BuilderBinary is the source locator for the builder executable.
	BuilderBinary string `yaml:"builder_binary"`
}

// Load reads and parses the builder.yaml at the given path.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read project configuration: %w", err)
	}

	var project Project
	if err := yaml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	project.BuilderBinary = strings.TrimSpace(project.BuilderBinary)
	if project.BuilderBinary == "" {
		return nil, fmt.Errorf("%w: 'builder_binary' key missing or empty", ErrInvalidConfig)
	}

	return &project, nil
}
