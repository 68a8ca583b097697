package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisURLEnv      = "REMINDER_REDIS_URL"
	redisAddrEnv     = "REMINDER_REDIS_ADDR"
	redisPasswordEnv = "REMINDER_REDIS_PASSWORD"
	redisDBEnv       = "REMINDER_REDIS_DB"
	redisTLSEnv      = "REMINDER_REDIS_TLS"
	redisTTLEnv      = "REMINDER_REDIS_CHECKPOINT_TTL"

	defaultCheckpointTTL = 7 * 24 * time.Hour
)

// RedisConfig configures the checkpoint store. Checkpointing is disabled
// when Addr is empty.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool

	// CheckpointTTL is how long saved tracker state outlives its last save.
	CheckpointTTL time.Duration
}

// LoadRedisConfig reads REMINDER_REDIS_URL (redis:// or rediss://) or, when
// it is unset, the separate address, password, db and tls variables.
func LoadRedisConfig() (*RedisConfig, error) {
	cfg := &RedisConfig{CheckpointTTL: defaultCheckpointTTL}

	if raw := os.Getenv(redisURLEnv); raw != "" {
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRedisURL, err)
		}
		cfg.Addr = opts.Addr
		cfg.Password = opts.Password
		cfg.DB = opts.DB
		cfg.TLS = opts.TLSConfig != nil
	} else {
		cfg.Addr = os.Getenv(redisAddrEnv)
		cfg.Password = os.Getenv(redisPasswordEnv)
		cfg.TLS, _ = strconv.ParseBool(os.Getenv(redisTLSEnv))
		if raw := os.Getenv(redisDBEnv); raw != "" {
			db, err := strconv.Atoi(raw)
			if err != nil || db < 0 {
				return nil, ErrInvalidRedisDB
			}
			cfg.DB = db
		}
	}

	if raw := os.Getenv(redisTTLEnv); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCheckpointTTL, raw)
		}
		cfg.CheckpointTTL = ttl
	}

	return cfg, nil
}

func (c *RedisConfig) Enabled() bool {
	return c != nil && c.Addr != ""
}

// Options builds go-redis client options.
func (c *RedisConfig) Options() *redis.Options {
	opts := &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}
	if c.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}
