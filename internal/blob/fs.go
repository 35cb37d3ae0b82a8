package blob

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSStore stores blobs as files under a single directory.
type FSStore struct {
	dir string
}

// NewFSStore creates the directory if needed and returns a store over it.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) path(name string) string {
	// Flatten any path separators so a crafted name cannot escape the dir.
	return filepath.Join(s.dir, filepath.Base(strings.ReplaceAll(name, "\\", "/")))
}

// Save writes the blob, replacing any existing file of the same name.
func (s *FSStore) Save(name string, r io.Reader) error {
	f, err := os.Create(s.path(name))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

// Open returns a reader over the named blob.
func (s *FSStore) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete removes the named blob. Deleting a missing blob is not an error.
func (s *FSStore) Delete(name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
