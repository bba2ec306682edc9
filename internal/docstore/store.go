// Package docstore keeps accepted raw uploads on disk under
// collision-resistant generated names.
package docstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store is a flat directory of stored documents.
type Store struct {
	dir string
}

// New creates the document directory if absent.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating document directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes data under a fresh random name keeping the original
// extension, and returns the stored name.
func (s *Store) Save(data []byte, ext string) (string, error) {
	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return name, nil
}

// Remove deletes a stored document. Removing a name that is already
// gone is not an error.
func (s *Store) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove document: %w", err)
	}
	return nil
}

// Path returns the absolute location of a stored document.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}
