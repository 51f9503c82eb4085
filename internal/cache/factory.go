package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	Backend    string
	FilePath   string
	SQLitePath string
	Prefix     string
}

// NewStore builds the configured backend. The redis client is only used for
// BackendRedis. A file store that failed to decode is returned together with
// its error so the caller can decide whether to continue empty.
func NewStore(cfg Config, redisClient *redis.Client) (Store, error) {
	switch cfg.Backend {
	case BackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("cache backend %q needs a redis client", cfg.Backend)
		}
		return NewRedisStore(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
		}), nil
	case BackendSQLite:
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendFile, "":
		return NewFileStore(cfg.FilePath)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
