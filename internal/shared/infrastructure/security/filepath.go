// Package security confines local state files to the application's data
// directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDir is returned when a path resolves outside its base directory.
var ErrOutsideDir = errors.New("path escapes base directory")

// forbidden holds characters never accepted in a state file path.
var forbidden = []string{";", "&", "|", "$", "`", "<", ">", "\n", "\r", "\x00"}

// ResolveInDir cleans path, resolves symlinks of the parts that exist and
// verifies the result stays inside baseDir. Paths that do not exist yet
// are allowed.
func ResolveInDir(path, baseDir string) (string, error) {
	if path == "" {
		return "", errors.New("file path cannot be empty")
	}
	if baseDir == "" {
		return "", errors.New("base directory cannot be empty")
	}
	for _, char := range forbidden {
		if strings.Contains(path, char) {
			return "", fmt.Errorf("file path contains forbidden character %q", char)
		}
	}

	cleanPath, err := resolve(path)
	if err != nil {
		return "", err
	}
	cleanBase, err := resolve(baseDir)
	if err != nil {
		return "", err
	}

	if cleanPath != cleanBase && !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not within %s", ErrOutsideDir, path, baseDir)
	}
	return cleanPath, nil
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	// Resolve the parent so a not-yet-created file under a symlinked
	// directory compares equal to its base.
	parent, perr := filepath.EvalSymlinks(filepath.Dir(abs))
	if perr != nil {
		return abs, nil
	}
	return filepath.Join(parent, filepath.Base(abs)), nil
}

// ReadFileInDir reads a file confined to baseDir.
func ReadFileInDir(path, baseDir string) ([]byte, error) {
	cleanPath, err := ResolveInDir(path, baseDir)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is confined above
	return os.ReadFile(cleanPath)
}

// WriteFileInDir writes data readable only by the current user, creating
// baseDir when needed.
func WriteFileInDir(path, baseDir string, data []byte) error {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", baseDir, err)
	}
	cleanPath, err := ResolveInDir(path, baseDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(cleanPath), err)
	}
	return os.WriteFile(cleanPath, data, 0o600)
}

// RemoveFileInDir deletes a file confined to baseDir. A missing file is not an error.
func RemoveFileInDir(path, baseDir string) error {
	cleanPath, err := ResolveInDir(path, baseDir)
	if err != nil {
		return err
	}
	if err := os.Remove(cleanPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
