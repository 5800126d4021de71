package database

import (
	"context"
	"log"
	"time"

	"inteldesk/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// NewRedis creates the Redis client used for advisory snapshot caching.
// A failed ping is logged but not fatal: callers fall back to Mongo.
func NewRedis(lc fx.Lifecycle, cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable at %s: %v", cfg.RedisAddr, err)
	} else {
		log.Println("Connected to Redis!")
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client
}
