package app

import (
	"fmt"
	"log/slog"

	"github.com/aanand-mishra/ugs-portal/internal/config"
	"github.com/aanand-mishra/ugs-portal/internal/storage"
	"github.com/aanand-mishra/ugs-portal/internal/storage/memory"
	"github.com/aanand-mishra/ugs-portal/internal/storage/redis"
	"github.com/aanand-mishra/ugs-portal/internal/storage/sqlite"
)

// OpenStorage opens the local-storage backend named in the config.
func OpenStorage(cfg config.StorageConfig, rc config.RedisConfig) (storage.Storage, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		slog.Info("storage initialised", slog.String("backend", cfg.Backend), slog.String("path", cfg.Path))
		return s, nil
	case config.BackendRedis:
		s, err := redis.New(rc.Addr, rc.Password, rc.DB)
		if err != nil {
			return nil, err
		}
		slog.Info("storage initialised", slog.String("backend", cfg.Backend), slog.String("address", rc.Addr))
		return s, nil
	case config.BackendMemory:
		slog.Warn("storage is in memory; tokens are lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("app.OpenStorage: unknown backend %q", cfg.Backend)
	}
}
