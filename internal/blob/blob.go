package blob

import (
	"errors"
	"io"
)

// ErrNotFound is returned when no blob exists under the requested name.
var ErrNotFound = errors.New("blob not found")

// Store is a file-blob store addressable by filename. Document files live
// here; the database only ever holds the name.
type Store interface {
	Save(name string, r io.Reader) error
	Open(name string) (io.ReadCloser, error)
	Delete(name string) error
}
