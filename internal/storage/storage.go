// Package storage manages the on-disk upload directory. Stored files get
// random names so an uploaded "report.pdf" never collides with or overwrites
// another upload; the original name lives in the database only.
package storage

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/borntodev-academy/go-auth-api/internal/uniuri"
)

// storedNameLen is the length of the random part of a stored filename.
const storedNameLen = 24

// ErrInvalidFilename is returned for stored filenames that would escape the
// upload directory.
var ErrInvalidFilename = errors.New("invalid filename")

// Store is a flat directory of uploaded files addressed by their stored name.
type Store struct {
	dir string
}

// New creates the upload directory if needed and returns a store rooted there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create upload directory")
	}

	return &Store{dir: dir}, nil
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// NewName returns a fresh random stored name carrying the extension of the
// original filename.
func (s *Store) NewName(original string) string {
	return uniuri.NewLen(storedNameLen) + filepath.Ext(original)
}

// Path maps a stored name to its absolute location inside the store. Names
// containing path separators or traversal segments are rejected.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", ErrInvalidFilename
	}

	return filepath.Join(s.dir, name), nil
}

// Exists reports whether a stored name currently has a file on disk.
func (s *Store) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}

	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

// Stat returns file info for a stored name.
func (s *Store) Stat(name string) (os.FileInfo, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat stored file")
	}

	return info, nil
}

// Delete removes a stored file from disk.
func (s *Store) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return errors.Wrap(err, "failed to delete stored file")
	}

	return nil
}
