package storage

import (
	"fmt"
	"log/slog"

	"evalgo.org/hostjobs/internal/config"
)

// Open returns the host store selected by cfg.Storage.Backend.
func Open(cfg *config.Config, logger *slog.Logger) (HostStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory, "":
		return NewMemoryStore(), nil
	case config.BackendCouchDB:
		return NewCouchStore(cfg.CouchDB, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
