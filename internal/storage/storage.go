package storage

import (
	"context"
	"io"
)

// Store holds the raw bytes of uploaded files. Keys are object names derived
// from the file id and original filename; the key is what the files table
// records as storage_path.
type Store interface {
	// Save streams data into the object at key and returns the byte count.
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Materialize returns a local filesystem path holding the object's
	// contents, for decoders that need a real file. cleanup must be called
	// when the path is no longer needed; it is a no-op for local backends.
	Materialize(ctx context.Context, key string) (path string, cleanup func(), err error)
	Remove(ctx context.Context, key string) error
}
