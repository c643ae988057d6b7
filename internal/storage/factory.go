package storage

import (
	"fmt"

	"file-parser-service/internal/config"
)

// New builds the store selected by storage.backend.
func New(cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case "local", "":
		return NewLocalStore(cfg.Storage.Local.Dir)
	case "s3":
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}
