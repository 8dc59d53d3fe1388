package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"voiceguard/internal/ports"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Backend is a key-value store that owns a connection.
type Backend interface {
	ports.KVStore
	io.Closer
}

// Config selects and configures a backend.
type Config struct {
	Driver     string
	SQLitePath string
	Redis      RedisConfig
}

// Open returns the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite:
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, fmt.Errorf("creating store directory: %w", err)
			}
		}
		return NewSQLiteStore(cfg.SQLitePath)
	case DriverRedis:
		return NewRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
