package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nutricoach/backend/config"
	"github.com/nutricoach/backend/internal/logging"
)

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	// Create Redis options
	opts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Use Redis URL if provided (for production deployments)
	if cfg.RedisURL != "" {
		parsedOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opts = parsedOpts
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger != nil {
		logger.Info("connected to redis", zap.String("addr", opts.Addr))
	}
	return client, nil
}

// OptionalRedis connects when Redis is configured and reachable. Without it
// caching, chat history and rate limiting are disabled.
func OptionalRedis(cfg *config.Config, logger *zap.Logger) *redis.Client {
	logger = logging.OrNop(logger)
	if !cfg.RedisEnabled() {
		logger.Warn("redis not configured; caching, chat history and rate limits disabled")
		return nil
	}
	client, err := NewRedisClient(cfg, logger)
	if err != nil {
		logger.Warn("redis unavailable; caching, chat history and rate limits disabled", zap.Error(err))
		return nil
	}
	return client
}
