// Package trackcache stores fetched audio assets on local disk. The
// cache is unbounded: every distinct track ever fetched stays for the
// lifetime of the directory.
package trackcache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store is a flat directory of cached tracks keyed by file name
type Store struct {
	root string
}

// New creates the cache directory if needed and returns a store over it
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("cache root cannot be empty")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Store{root: root}, nil
}

// path maps a track key onto the cache directory, refusing keys that
// would escape it
func (s *Store) path(trackKey string) (string, error) {
	name := filepath.Base(filepath.Clean(trackKey))
	if name == "." || name == ".." || name == string(filepath.Separator) || strings.ContainsRune(trackKey, filepath.Separator) {
		return "", fmt.Errorf("invalid track key: %q", trackKey)
	}
	return filepath.Join(s.root, name), nil
}

// Exists reports whether a track is cached
func (s *Store) Exists(trackKey string) bool {
	p, err := s.path(trackKey)
	if err != nil {
		return false
	}

	_, err = os.Stat(p)
	return err == nil
}

// Open returns a reader over a cached track
func (s *Store) Open(trackKey string) (io.ReadCloser, error) {
	p, err := s.path(trackKey)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open cached track %s: %w", trackKey, err)
	}

	return f, nil
}

// Write stores a track, fully or not at all: bytes land in a temp
// file that is renamed into place only when the source is exhausted
// without error.
func (s *Store) Write(trackKey string, r io.Reader) error {
	p, err := s.path(trackKey)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, ".partial-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write track %s: %w", trackKey, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize track %s: %w", trackKey, err)
	}

	return nil
}

// Keys enumerates cached track keys without touching anything remote
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".partial-") {
			continue
		}
		keys = append(keys, entry.Name())
	}

	return keys, nil
}
