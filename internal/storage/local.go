package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LocalStore is a filesystem-backed ObjectStore. It mirrors the local-path
// bypass used when running the agent outside the cloud, and doubles as the
// test double for the bucket client.
type LocalStore struct {
	Root string
}

// NewLocalStore creates a store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{Root: dir}
}

func (s *LocalStore) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Root, path)
}

// List returns the files directly under the prefix directory, sorted.
// A prefix naming a single file yields just that file.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	full := s.resolve(prefix)

	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", prefix, err)
	}
	if !info.IsDir() {
		return []string{full}, nil
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(full, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Fetch reads one file.
func (s *LocalStore) Fetch(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	return data, nil
}

// Put writes a file, creating parent directories as needed.
func (s *LocalStore) Put(_ context.Context, path string, data []byte) (string, error) {
	full := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return full, nil
}
