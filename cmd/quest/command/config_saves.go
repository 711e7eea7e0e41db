package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-quest/internal/saves"
	"github.com/redis/go-redis/v9"
)

type SaveBackend int

const (
	SaveBackendFile SaveBackend = iota
	SaveBackendRedis
	SaveBackendMemory
)

func (b *SaveBackend) UnmarshalText(text []byte) error {
	switch string(text) {
	case "file":
		*b = SaveBackendFile
	case "redis":
		*b = SaveBackendRedis
	case "memory":
		*b = SaveBackendMemory
	default:
		return fmt.Errorf("unknown save backend: %s", text)
	}
	return nil
}

type SavesConfig struct {
	Backend SaveBackend `json:"backend"`
	Path    string      `json:"path,omitempty"`

	RedisAddr     string `json:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty"`
	RedisTTL      string `json:"redis_ttl,omitempty"`
}

func (c *SavesConfig) Validate() error {
	el := errors.NewErrorList()

	switch c.Backend {
	case SaveBackendFile:
		if c.Path == "" {
			el.Add(fmt.Errorf("path is required for the file save backend"))
		}
	case SaveBackendRedis:
		if c.RedisAddr == "" {
			el.Add(fmt.Errorf("redis_addr is required for the redis save backend"))
		}
		if c.RedisTTL != "" {
			if _, err := time.ParseDuration(c.RedisTTL); err != nil {
				el.Add(fmt.Errorf("parsing redis_ttl: %w", err))
			}
		}
	case SaveBackendMemory:
		// nothing to check
	}

	return el.Err()
}

func (c *SavesConfig) BuildStore() (saves.Store, error) {
	switch c.Backend {
	case SaveBackendFile:
		return saves.NewFileStore(c.Path)

	case SaveBackendRedis:
		var ttl time.Duration
		if c.RedisTTL != "" {
			d, err := time.ParseDuration(c.RedisTTL)
			if err != nil {
				return nil, fmt.Errorf("parsing redis_ttl: %w", err)
			}
			ttl = d
		}
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		return saves.NewRedisStore(client, ttl), nil

	case SaveBackendMemory:
		return saves.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown save backend: %v", c.Backend)
	}
}
