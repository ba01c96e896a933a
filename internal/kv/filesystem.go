package kv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shelf-go/internal/shelf"
)

// FileSystemStore keeps one JSON document per key:
//
//	<root>/
//	  bookmarks.json
//	  categories.json
//	  ...
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates a store rooted at the given directory,
// creating the directory if needed.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileSystemStore{root: root}, nil
}

func (s *FileSystemStore) Get(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, shelf.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *FileSystemStore) Set(key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, value)
}

func (s *FileSystemStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; every write is already on disk.
func (s *FileSystemStore) Close() error {
	return nil
}

// ValidateSetup verifies that the store root exists and is a directory.
func (s *FileSystemStore) ValidateSetup() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("store root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store root is not a directory: %s", s.root)
	}
	return nil
}

func (s *FileSystemStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key: %q", key)
	}
	return filepath.Join(s.root, key+".json"), nil
}

// writeFileAtomic writes data to path using a temp file in the same
// directory followed by a rename.
func writeFileAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemStore implements shelf.Store interface
var _ shelf.Store = (*FileSystemStore)(nil)
