// Package cache stores successful API responses between calls.
//
// Four backends implement [Cache]:
//
//   - [FileCache]: JSON files under a directory, for CLI usage
//   - [RedisCache]: a shared Redis instance
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing, used when caching is disabled
//
// Keys are produced by a [Keyer]. [ScopedKeyer] prefixes keys so that
// responses fetched with different API keys never collide.
package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gtrends/gtrends-go/pkg/config"
	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
)

// Driver names accepted by the cache.driver setting.
const (
	DriverFile  = "file"
	DriverRedis = "redis"
	DriverMongo = "mongo"
	DriverNull  = "null"
)

const appName = "gtrends"

// ErrUnknownDriver is returned by [Open] for an unsupported cache.driver.
var ErrUnknownDriver = errors.New("unknown cache driver")

// Cache is a byte-oriented key/value store with per-entry expiration.
// Get reports a miss with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Open returns the backend selected by s. A disabled cache yields a
// [NullCache]. An unsupported driver or an unusable directory is a
// *errors.ConfigurationError; a redis or mongo server that cannot be
// reached is a *errors.NetworkError.
func Open(ctx context.Context, s config.CacheSettings) (Cache, error) {
	if !s.Enabled {
		return NewNullCache(), nil
	}

	switch s.Driver {
	case DriverFile, "":
		dir := s.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				e := gterrors.NewConfiguration("cache.dir", "", "an explicit cache.dir", "Cannot resolve the default cache directory")
				e.Cause = err
				return nil, e
			}
			dir = d
		}
		fc, err := NewFileCache(dir)
		if err != nil {
			e := gterrors.NewConfiguration("cache.dir", dir, "writable directory", "Cache directory %s is not usable", dir)
			e.Cause = err
			return nil, e
		}
		return fc, nil
	case DriverRedis:
		rc, err := NewRedisCache(ctx, s.RedisAddr)
		if err != nil {
			return nil, gterrors.NewNetwork("", s.RedisAddr, err, "Failed to connect to the redis cache at %s", s.RedisAddr)
		}
		return rc, nil
	case DriverMongo:
		mc, err := NewMongoCache(ctx, s.MongoURI)
		if err != nil {
			// The URI may carry credentials.
			return nil, gterrors.NewNetwork("", "", err, "Failed to connect to the mongo cache")
		}
		return mc, nil
	case DriverNull:
		return NewNullCache(), nil
	default:
		e := gterrors.NewConfiguration("cache.driver", s.Driver, "file, redis, mongo or null",
			"Unsupported cache driver %q", s.Driver)
		e.Cause = ErrUnknownDriver
		return nil, e
	}
}

// DefaultDir returns the cache directory using the XDG standard
// (~/.cache/gtrends/).
func DefaultDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
