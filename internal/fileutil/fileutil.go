// Package fileutil provides small filesystem helpers shared across the
// engine: atomic writes, existence checks, and YAML read/write wrappers.
package fileutil

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AtomicWrite writes data to path by first writing to a sibling ".tmp" file
// and renaming it into place, so readers never observe a partial write.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}

// EnsureDir creates dir (and parents) if it does not already exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// PathExists reports whether path exists on disk, regardless of type.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ReadYAMLFile reads and unmarshals a YAML file into v.
func ReadYAMLFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

// WriteYAMLFile marshals v as YAML and writes it atomically to path.
func WriteYAMLFile(path string, v interface{}, perm os.FileMode) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return AtomicWrite(path, data, perm)
}
