// Package assets persists a retrieved item's images and text to its folder.
package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TextFileName is the name of the per-item text file.
const TextFileName = "text.txt"

// WriteError means an asset could not be written; callers skip the asset.
type WriteError struct {
	Path    string
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("write error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("write error for %s: %s", e.Path, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// Store writes item assets. The zero value is ready to use.
type Store struct {
	// DirMode and FileMode default to 0755 and 0644.
	DirMode  os.FileMode
	FileMode os.FileMode
}

// New returns a Store with default permissions.
func New() *Store {
	return &Store{DirMode: 0755, FileMode: 0644}
}

// EnsureDir creates dir and any missing parents.
func (s *Store) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, s.dirMode()); err != nil {
		return &WriteError{Path: dir, Message: "failed to create directory", Cause: err}
	}
	return nil
}

// SaveImage streams r into destPath, creating the parent directory on demand.
// A partially written file is removed on failure.
func (s *Store) SaveImage(r io.Reader, destPath string) (int64, error) {
	if err := s.EnsureDir(filepath.Dir(destPath)); err != nil {
		return 0, err
	}

	f, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, s.fileMode())
	if err != nil {
		return 0, &WriteError{Path: destPath, Message: "failed to create file", Cause: err}
	}

	n, err := io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(destPath)
		return n, &WriteError{Path: destPath, Message: "failed to write image", Cause: err}
	}
	return n, nil
}

// SaveText writes content verbatim to destPath.
func (s *Store) SaveText(content, destPath string) error {
	if err := s.EnsureDir(filepath.Dir(destPath)); err != nil {
		return err
	}
	if err := os.WriteFile(destPath, []byte(content), s.fileMode()); err != nil {
		return &WriteError{Path: destPath, Message: "failed to write text", Cause: err}
	}
	return nil
}

func (s *Store) dirMode() os.FileMode {
	if s.DirMode == 0 {
		return 0755
	}
	return s.DirMode
}

func (s *Store) fileMode() os.FileMode {
	if s.FileMode == 0 {
		return 0644
	}
	return s.FileMode
}
