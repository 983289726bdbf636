package store

import (
	"context"
	"fmt"

	"github.com/7eVeNcO/semtk/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`

	// Path is the directory for "file" and the database file for "sqlite".
	Path string `toml:"path"`

	// URL is the server address for "redis" and "mongo".
	URL string `toml:"url"`

	Prefix     string `toml:"prefix"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Open creates the store described by cfg. An empty backend means "file".
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Backend {
	case "", BackendFile:
		st, err = NewFileStore(cfg.Path)
	case BackendSQLite:
		if cfg.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "sqlite store needs a path")
		}
		st, err = NewSQLiteStore(cfg.Path)
	case BackendRedis:
		if cfg.URL == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "redis store needs a url")
		}
		st, err = DialRedis(ctx, cfg.URL, cfg.Prefix)
	case BackendMongo:
		if cfg.URL == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo store needs a url")
		}
		st, err = DialMongo(ctx, cfg.URL, cfg.Database, cfg.Collection)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// String names the backend and, for local backends, its path.
// Server URLs are omitted.
func (c Config) String() string {
	switch c.Backend {
	case BackendRedis, BackendMongo:
		return c.Backend
	case "":
		return fmt.Sprintf("%s (%s)", BackendFile, c.Path)
	default:
		return fmt.Sprintf("%s (%s)", c.Backend, c.Path)
	}
}
