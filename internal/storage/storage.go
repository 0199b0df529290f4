// Package storage confines the file manager to one directory tree.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"hostpanel/pkg/apierror"
)

type Storage struct {
	sandbox *Sandbox
}

// New prepares root, creating it when missing.
func New(root string) (*Storage, error) {
	sandbox, err := NewSandbox(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(sandbox.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create files root: %w", err)
	}

	return &Storage{sandbox: sandbox}, nil
}

func (s *Storage) RootAbs() string {
	return s.sandbox.RootAbs()
}

func (s *Storage) Resolve(clientPath string) (string, error) {
	return s.sandbox.Resolve(clientPath)
}

func (s *Storage) ClientPath(absPath string) string {
	return s.sandbox.ClientPath(absPath)
}

func (s *Storage) Stat(clientPath string) (fs.FileInfo, error) {
	resolved, err := s.Resolve(clientPath)
	if err != nil {
		return nil, err
	}
	return os.Stat(resolved)
}

func (s *Storage) ReadDir(clientPath string) ([]fs.DirEntry, error) {
	resolved, err := s.Resolve(clientPath)
	if err != nil {
		return nil, err
	}
	return os.ReadDir(resolved)
}

// Mkdir creates one directory. The parent must exist and the name must be free.
func (s *Storage) Mkdir(clientPath string) error {
	resolved, err := s.Resolve(clientPath)
	if err != nil {
		return err
	}

	if err := os.Mkdir(resolved, 0o755); err != nil {
		switch {
		case errors.Is(err, fs.ErrExist):
			return apierror.New("ALREADY_EXISTS", "path already exists", clientPath, http.StatusConflict)
		case errors.Is(err, fs.ErrNotExist):
			return apierror.NotFound("parent directory not found", clientPath)
		}
		return fmt.Errorf("mkdir %q: %w", clientPath, err)
	}
	return nil
}

func (s *Storage) Open(clientPath string) (*os.File, error) {
	resolved, err := s.Resolve(clientPath)
	if err != nil {
		return nil, err
	}
	return os.Open(resolved)
}

// WriteFrom streams r into clientPath through a temporary file in the same
// directory, so readers never observe a partial file. At most limit bytes are
// accepted when limit is positive.
func (s *Storage) WriteFrom(clientPath string, r io.Reader, limit int64) (int64, error) {
	resolved, err := s.Resolve(clientPath)
	if err != nil {
		return 0, err
	}
	if resolved == s.RootAbs() {
		return 0, apierror.BadRequest("cannot write to the files root", clientPath)
	}

	tmp, err := os.CreateTemp(filepath.Dir(resolved), ".upload-*")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, apierror.NotFound("directory not found", filepath.Dir(clientPath))
		}
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	written, err := io.CopyBuffer(tmp, src, make([]byte, 32*1024))
	closeErr := tmp.Close()
	if err != nil {
		return 0, fmt.Errorf("write %q: %w", clientPath, err)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("close %q: %w", clientPath, closeErr)
	}
	if limit > 0 && written > limit {
		return 0, apierror.New("FILE_TOO_LARGE", "file exceeds the size limit", clientPath, http.StatusRequestEntityTooLarge)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmpName, resolved); err != nil {
		return 0, fmt.Errorf("commit %q: %w", clientPath, err)
	}
	return written, nil
}

// Rename moves oldPath to newPath. The destination must not exist.
func (s *Storage) Rename(oldPath string, newPath string) error {
	oldResolved, err := s.Resolve(oldPath)
	if err != nil {
		return err
	}
	newResolved, err := s.Resolve(newPath)
	if err != nil {
		return err
	}
	if oldResolved == s.RootAbs() {
		return apierror.BadRequest("cannot rename the files root", oldPath)
	}

	if _, err := os.Lstat(newResolved); err == nil {
		return apierror.New("ALREADY_EXISTS", "path already exists", newPath, http.StatusConflict)
	}

	if err := os.Rename(oldResolved, newResolved); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apierror.NotFound("path not found", oldPath)
		}
		return fmt.Errorf("rename %q to %q: %w", oldPath, newPath, err)
	}
	return nil
}

func (s *Storage) RemoveAll(clientPath string) error {
	resolved, err := s.Resolve(clientPath)
	if err != nil {
		return err
	}
	if resolved == s.RootAbs() {
		return apierror.BadRequest("cannot delete the files root", clientPath)
	}

	if err := os.RemoveAll(resolved); err != nil {
		return fmt.Errorf("remove %q: %w", clientPath, err)
	}
	return nil
}
