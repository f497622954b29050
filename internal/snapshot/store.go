// Package snapshot persists raw API response bodies as audit artifacts.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrInvalidName is returned for snapshot names that would leave the data directory
var ErrInvalidName = errors.New("invalid snapshot name")

// Store writes snapshot files into a single data directory
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a snapshot store rooted at dir on the given filesystem
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// NewOsStore creates a snapshot store on the local filesystem
func NewOsStore(dir string) *Store {
	return NewStore(afero.NewOsFs(), dir)
}

// Dir returns the snapshot directory
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path of a snapshot file
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Write stores body verbatim under name, creating the directory and
// overwriting any existing file
func (s *Store) Write(name string, body []byte) error {
	if err := validateName(name); err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory %s: %w", s.dir, err)
	}

	path := s.Path(name)
	if err := afero.WriteFile(s.fs, path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}

	log.Debug().
		Str("path", path).
		Int("size", len(body)).
		Msg("Snapshot saved")

	return nil
}

// Reset removes everything inside the snapshot directory and recreates it empty
func (s *Store) Reset() error {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to list snapshot directory %s: %w", s.dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(s.dir, entry.Name())
		if err := s.fs.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory %s: %w", s.dir, err)
	}

	log.Debug().
		Str("dir", s.dir).
		Int("removed", len(entries)).
		Msg("Snapshot directory cleaned")

	return nil
}

// validateName accepts only plain file names inside the data directory
func validateName(name string) error {
	if name == "" || name == "." || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
