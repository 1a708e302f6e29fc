// Package resource locates bundled artifacts such as model files.
package resource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when no candidate directory holds the artifact.
var ErrNotFound = errors.New("resource not found")

// Resolver searches an ordered list of directories for a named artifact.
type Resolver struct {
	Dirs []string
}

// DefaultDirs returns the model search path: the working directory, the
// directory of the executable and ~/.mudra/models.
func DefaultDirs() []string {
	dirs := []string{"models", "../models"}

	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(execPath), "models"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".mudra", "models"))
	}
	return dirs
}

// New creates a Resolver over dirs, or DefaultDirs when dirs is empty.
func New(dirs ...string) *Resolver {
	if len(dirs) == 0 {
		dirs = DefaultDirs()
	}
	return &Resolver{Dirs: dirs}
}

// Resolve returns the absolute path of the first regular file called name.
// Absolute names are checked as given.
func (r *Resolver) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}

	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = candidates[:0]
		for _, dir := range r.Dirs {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", path, err)
		}
		return abs, nil
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}
