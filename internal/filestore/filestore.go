package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store handles local storage of uploaded import files.
type Store struct {
	basePath string
}

// New creates a file store rooted at basePath, creating the directory if
// needed.
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create filestore directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Save stores a file under a fresh unique name (original extension
// preserved) and returns that name.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	newFilename := uuid.NewString() + filepath.Ext(filename)
	fullPath := filepath.Join(s.basePath, newFilename)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("write file: %w", err)
	}

	return newFilename, nil
}

// Open returns a reader for a stored file.
func (s *Store) Open(filename string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.basePath, filename))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes a stored file; a missing file is not an error.
func (s *Store) Delete(filename string) error {
	if filename == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.basePath, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
