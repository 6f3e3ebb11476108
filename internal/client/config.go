// Package client assembles the post client: cache slot, remote API client,
// sync controller and form controller.
package client

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/inkwell/internal/client/cache"
)

// Cache drivers.
const (
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// Config holds client configuration.
type Config struct {
	BaseURL string      `yaml:"base_url"`
	Token   string      `yaml:"token"`
	Cache   CacheConfig `yaml:"cache"`
}

// Validate validates the client configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
	); err != nil {
		return err
	}
	return c.Cache.Validate()
}

// CacheConfig selects where the last known post list is kept.
type CacheConfig struct {
	Driver string      `yaml:"driver"`
	Dir    string      `yaml:"dir"`
	Key    string      `yaml:"key"`
	Redis  RedisConfig `yaml:"redis"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = CacheFile
	}
	if c.Key == "" {
		c.Key = cache.DefaultKey
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(CacheFile, CacheRedis, CacheMemory)),
	); err != nil {
		return err
	}
	if c.Driver == CacheRedis {
		return c.Redis.Validate()
	}
	return nil
}

// RedisConfig holds the Redis connection used by the redis cache driver.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Validate validates the Redis configuration.
func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
	)
}

// DefaultConfig returns client defaults: a local server and a file cache.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Cache: CacheConfig{
			Driver: CacheFile,
			Key:    cache.DefaultKey,
			Redis:  RedisConfig{Addr: "localhost:6379"},
		},
	}
}
