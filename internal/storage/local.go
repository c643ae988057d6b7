package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps uploads in a directory on disk.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(key string) string {
	// keys never escape the upload dir
	return filepath.Join(s.dir, filepath.Base(key))
}

func (s *LocalStore) Save(ctx context.Context, key string, data io.Reader) (int64, error) {
	out, err := os.Create(s.path(key))
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", key, err)
	}

	written, err := io.Copy(out, data)
	if err != nil {
		out.Close()
		return written, fmt.Errorf("write %s: %w", key, err)
	}
	if err := out.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", key, err)
	}
	return written, nil
}

func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}

func (s *LocalStore) Materialize(ctx context.Context, key string) (string, func(), error) {
	path := s.path(key)
	if _, err := os.Stat(path); err != nil {
		return "", nil, fmt.Errorf("stat %s: %w", key, err)
	}
	return path, func() {}, nil
}

func (s *LocalStore) Remove(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
