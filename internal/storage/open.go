package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/nikbrunner/marks/internal/config"
	"github.com/nikbrunner/marks/internal/logger"
)

// Open opens the configured storage backend.
// The auto driver prefers SQLite if the database file exists, otherwise
// falls back to JSON.
func Open(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (Storage, error) {
	driver := cfg.Driver
	if driver == "" || driver == config.DriverAuto {
		driver = config.DriverJSON
		if isRemoteDSN(cfg.DSN) {
			driver = config.DriverSQLite
		} else if _, err := os.Stat(cfg.DSN); err == nil {
			driver = config.DriverSQLite
		}
	}

	switch driver {
	case config.DriverJSON:
		log.Debug("using json storage", logger.String("path", cfg.Path))
		return NewJSONStorage(cfg.Path), nil
	case config.DriverSQLite:
		log.Debug("using sqlite storage", logger.Bool("remote", isRemoteDSN(cfg.DSN)))
		return NewSQLiteStorage(cfg.DSN)
	case config.DriverRedis:
		log.Debug("using redis storage", logger.String("addr", cfg.RedisAddr))
		return NewRedisStorage(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		}, log)
	case config.DriverMemory:
		log.Warn("using memory storage, nothing will be persisted")
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
