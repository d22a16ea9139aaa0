package cache

import (
	"os"

	"liist/config"

	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitializeCache opens the session cache selected by CACHE_TYPE. The
// in-memory cache loses every session on restart; use redis to keep them.
func InitializeCache(cfg *config.Config) cache.Cache {
	c, err := New(cfg)
	if err != nil {
		logger.Error("Failed to initialize cache:", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Cache initialized successfully", zap.String("type", cfg.CacheType))
	return c
}

// New builds the cache without exiting on failure. The redis cache is
// pinged on construction.
func New(cfg *config.Config) (cache.Cache, error) {
	return cache.New(cache.Config{
		Type:          cfg.CacheType,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
}
